package models

import (
	"time"
)

// Request represents a pending user registration request.
type Request struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	CreateDate int64  `json:"create_date"`
}

// Created returns the creation date of the request.
func (r Request) Created() time.Time {
	return time.UnixMilli(r.CreateDate)
}

// RequestList is the body returned by the registration list endpoints.
type RequestList struct {
	Requests []Request `json:"requests"`
}

// Verb is the name of a moderation action on a request.
type Verb string

const (
	VerbApprove Verb = "approve"
	VerbReject  Verb = "reject"
)

// Valid reports whether the server knows the verb.
func (v Verb) Valid() bool {
	return v == VerbApprove || v == VerbReject
}
