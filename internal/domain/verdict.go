package domain

import "fmt"

// ValidationVerdict is the grade of a free-text answer. It is never persisted.
type ValidationVerdict struct {
	IsCorrect   bool   `json:"isCorrect"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Validate checks that the score lies in [0,100].
func (v *ValidationVerdict) Validate() error {
	if v.Score < 0 || v.Score > 100 {
		return fmt.Errorf("%w: score %d out of range", ErrSerialization, v.Score)
	}
	return nil
}
