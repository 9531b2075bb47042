package protocol

// Client-to-server event types.
const (
	EvtJoinGame    = "join_game"
	EvtStartGame   = "start_game"
	EvtEndTurn     = "end_turn"
	EvtEndGame     = "end_game"
	EvtSendMessage = "send_message"
	EvtLineStart   = "line_start"
	EvtLineUpdate  = "line_update"
	EvtLineEnd     = "line_end"
	EvtClearLines  = "clear_lines"
)

// Server-to-client event types. Line events and clear_lines reuse the
// client-side names.
const (
	EvtUserJoined          = "user_joined"
	EvtUserLeft            = "user_left"
	EvtErrorMessage        = "error_message"
	EvtRevealDrawer        = "reveal_drawer"
	EvtRevealWordPrivate   = "reveal_word_private"
	EvtStartTurn           = "start_turn"
	EvtRevealUpdatedPoints = "reveal_updated_points"
	EvtCorrectGuess        = "correct_guess"
	EvtReceiveMessage      = "receive_message"
	EvtGameEnded           = "game_ended"
	EvtLineAck             = "line_ack"
)

// Chat feed styling hints, mirrored by the client renderer.
const (
	MsgTypeChat         = "chat"
	MsgTypePlayerChange = "player_change"
	MsgTypeCorrectGuess = "correct_guess"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is a stroke as it travels on the wire. For line_start/line_end the ID
// is the sender's local id going up and the canonical id coming down.
type Line struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// PlayerInfo is the public view of a player in room-wide payloads.
type PlayerInfo struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Color     string `json:"color,omitempty"`
	IsDrawing bool   `json:"isDrawing"`
}

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type      string  `json:"type"`
	GameID    string  `json:"gameId,omitempty"`    // join_game
	Message   string  `json:"message,omitempty"`   // send_message
	Line      *Line   `json:"line,omitempty"`      // line_start / line_end
	LineID    string  `json:"id,omitempty"`        // line_update (local id)
	NewPoints []Point `json:"newPoints,omitempty"` // line_update
}

// ServerMessage is the JSON structure sent to clients. Exactly the fields
// relevant to Type are populated; the rest stay omitted.
type ServerMessage struct {
	Type string `json:"type"`

	User     string       `json:"user,omitempty"`
	Message  string       `json:"message,omitempty"`
	IsPublic bool         `json:"isPublic,omitempty"`
	MsgType  string       `json:"msgType,omitempty"`
	Players  []PlayerInfo `json:"players,omitempty"`

	RoundNum   int    `json:"roundNum,omitempty"`
	CurrDrawer string `json:"currDrawer,omitempty"`
	MaskedWord string `json:"maskedWord,omitempty"`
	Word       string `json:"word,omitempty"`
	CurrWord   string `json:"currWord,omitempty"` // correct_guess reveals the word to that guesser
	EndTime    int64  `json:"endTime,omitempty"`  // epoch ms

	PointChange    int             `json:"pointChange,omitempty"`
	DrawerScore    int             `json:"drawerScore,omitempty"`
	ActiveGuessers map[string]bool `json:"activeGuessers,omitempty"`
	Winner         string          `json:"winner,omitempty"`

	Line      *Line   `json:"line,omitempty"`
	LineID    string  `json:"id,omitempty"` // canonical id for line_update deltas
	NewPoints []Point `json:"newPoints,omitempty"`
	LocalID   string  `json:"localId,omitempty"` // line_ack: sender's id being acknowledged

	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}
