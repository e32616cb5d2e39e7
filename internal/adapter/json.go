package adapter

import (
	"encoding/json"
)

// JSON is the codec seam shared by the session mirror, the event
// publisher and the pinner, kept behind an interface so tests can fail
// encodes on demand.
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// RealJSON is the encoding/json implementation used outside tests
type RealJSON struct{}

// NewJSON creates the standard library backed codec
func NewJSON() JSON {
	return &RealJSON{}
}

func (j *RealJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j *RealJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
