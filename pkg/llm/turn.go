// Package llm holds the wire types shared by the inference API and its clients.
package llm

// ChatTurn is one past question/answer pair of a conversation.
type ChatTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// History is a conversation in chronological order, oldest turn first.
// It lives in the client session and is sent with every request.
type History []ChatTurn

// Clone returns a copy so callers can keep appending to their own history.
func (h History) Clone() History {
	if h == nil {
		return History{}
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}
