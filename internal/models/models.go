package models

// Position is a zero-based editor coordinate.
type Position struct {
	Column     int `json:"column"`
	LineNumber int `json:"lineNumber"`
}

// Range is the line/column form of an edit span.
type Range struct {
	StartLineNumber int `json:"startLineNumber"`
	StartColumn     int `json:"startColumn"`
	EndLineNumber   int `json:"endLineNumber"`
	EndColumn       int `json:"endColumn"`
}

// Change is a single incremental edit. RangeOffset and RangeLength are the
// authoritative character span to replace; Range is advisory display info.
type Change struct {
	Range       Range  `json:"range"`
	RangeOffset int    `json:"rangeOffset"`
	RangeLength int    `json:"rangeLength"`
	Text        string `json:"text"`
}

// CollaboratorState is the wire snapshot of one connected collaborator.
type CollaboratorState struct {
	ID                       string     `json:"id"`
	Username                 string     `json:"username"`
	CursorPosition           Position   `json:"cursorPosition"`
	CursorSecondaryPositions []Position `json:"cursorSecondaryPositions"`
}

// RoomState is the wire snapshot of a room. Code carries the document text.
type RoomState struct {
	Roomcode string              `json:"roomcode"`
	Code     string              `json:"code"`
	People   []CollaboratorState `json:"people"`
}
