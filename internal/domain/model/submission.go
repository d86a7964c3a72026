// Package model contains domain models passed between layers.
package model

import "time"

// SubmissionRecord is the flat record built from the form for one submit event.
// Every key is always serialized; an empty string is a valid value.
type SubmissionRecord struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	ProgrammingLanguages string `json:"programming_languages"`
	Tools                string `json:"tools"`
}

// Submission is a record as kept by the receiver.
type Submission struct {
	ID        string           `json:"id"`
	Record    SubmissionRecord `json:"record"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewSubmission stamps rec with id and a second-precision UTC creation time.
func NewSubmission(id string, rec SubmissionRecord, now time.Time) Submission {
	ts := now.UTC().Truncate(time.Second)
	return Submission{
		ID:        id,
		Record:    rec,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}
