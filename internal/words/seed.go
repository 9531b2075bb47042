package words

// SeedWords is the default drawing vocabulary. The db migration seeds the
// words table from the same list.
var SeedWords = []string{
	"apple", "balloon", "banana", "beach", "bicycle",
	"book", "bridge", "cactus", "camera", "carrot",
	"castle", "cat", "chair", "cloud", "computer",
	"cookie", "cow", "cupcake", "dinosaur", "dog",
	"drum", "duck", "elephant", "fire", "fish",
	"flower", "frog", "giraffe", "guitar", "hat",
	"house", "ice cream", "jellyfish", "kangaroo", "key",
	"lamp", "leaf", "lion", "moon", "mountain",
	"mushroom", "pencil", "pizza", "rainbow", "rocket",
	"robot", "shark", "snowman", "sun", "tree",
	"train", "airplane", "anchor", "astronaut", "bat",
	"bed", "bottle", "broom", "bus", "butterfly",
	"candle", "clown", "crayon", "crocodile", "diamond",
	"door", "dragon", "eagle", "ear", "eye",
	"flag", "flashlight", "fountain", "ghost", "glasses",
	"glove", "hammer", "helicopter", "hippo", "horse",
	"hotdog", "igloo", "island", "jungle", "kite",
	"ladder", "lizard", "motorcycle", "octopus", "panda",
	"parrot", "penguin", "rain", "sheep", "snail",
	"spaceship", "spoon", "strawberry", "submarine", "suitcase",
	"telescope", "tiger", "toothbrush", "turtle", "umbrella",
}
