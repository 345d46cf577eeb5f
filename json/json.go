// Package json holds the wire representations exchanged with the assistant
// backend. It converts between parley domain types and the JSON bodies of
// the send, history and clear endpoints.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/parley"
)

// sendBody is the POST /send-message request body.
type sendBody struct {
	UserID          string `json:"user_id"`
	Message         string `json:"message"`
	IsSpecificUser  bool   `json:"is_specific_user"`
	CurrentDateTime string `json:"current_date_time"`
}

// clearBody is the DELETE /conversations request body.
type clearBody struct {
	UserID string `json:"user_id"`
}

// MarshalSendRequest encodes a SendRequest. The timestamp is written in
// RFC 3339 with the request's own offset.
func MarshalSendRequest(req parley.SendRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(sendBody{
		UserID:          req.UserID,
		Message:         req.Message,
		IsSpecificUser:  req.IsSpecificUser,
		CurrentDateTime: req.CurrentDateTime.Format(time.RFC3339),
	})
}

// UnmarshalSendRequest decodes a send body. It is the server-side
// counterpart of MarshalSendRequest.
func UnmarshalSendRequest(data []byte) (parley.SendRequest, error) {
	var b sendBody
	if err := json.Unmarshal(data, &b); err != nil {
		return parley.SendRequest{}, fmt.Errorf("unmarshal send body: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, b.CurrentDateTime)
	if err != nil {
		return parley.SendRequest{}, fmt.Errorf("current_date_time: %w", err)
	}
	req := parley.SendRequest{
		UserID:          b.UserID,
		Message:         b.Message,
		IsSpecificUser:  b.IsSpecificUser,
		CurrentDateTime: ts,
	}
	if err := req.Validate(); err != nil {
		return parley.SendRequest{}, err
	}
	return req, nil
}

// MarshalClearRequest encodes the clear-history body for userID.
func MarshalClearRequest(userID string) ([]byte, error) {
	return json.Marshal(clearBody{UserID: userID})
}

// UnmarshalClearRequest returns the user id from a clear-history body.
func UnmarshalClearRequest(data []byte) (string, error) {
	var b clearBody
	if err := json.Unmarshal(data, &b); err != nil {
		return "", fmt.Errorf("unmarshal clear body: %w", err)
	}
	return b.UserID, nil
}
