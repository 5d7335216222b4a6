package models

// Option is one selectable answer of a question
type Option struct {
	ItemID int64  `json:"item_id"`
	Text   string `json:"text"`
}

// Question is a multiple choice question built on demand; it is never stored
type Question struct {
	Prompt        string   `json:"prompt"`
	CorrectItemID int64    `json:"correct_item_id"`
	Options       []Option `json:"options"`
}

// CorrectOption returns the option that answers the question
func (q Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.ItemID == q.CorrectItemID {
			return o, true
		}
	}
	return Option{}, false
}
