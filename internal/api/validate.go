package api

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"liftplan/internal/services"
	"liftplan/internal/storage"
)

// MaxURLs is the largest number of URLs accepted by a single analysis.
const MaxURLs = 5

// Client-facing validation messages.
const (
	MsgURLCount           = "Please provide 1-5 workout URLs."
	MsgInvalidURL         = "One or more URLs are invalid."
	MsgPreferencesObject  = "Preferences must be an object."
	MsgPreferenceValues   = "Preference values must be strings."
	MsgSaveFields         = "Summary must include plan and summary strings."
	MsgInvalidPreferences = "Invalid preferences payload."
	MsgInvalidFeedback    = "Invalid feedback payload"
	MsgInvalidTimestamp   = "Invalid timestamp"
	MsgInvalidRequestBody = "Invalid JSON payload."
)

const maxSafeJSONInteger = 1<<53 - 1

var urlPattern = regexp.MustCompile(`(?i)^https?://`)

// ParseAnalyzeRequest validates an analysis request body.
func ParseAnalyzeRequest(body []byte) (AnalyzeRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return AnalyzeRequest{}, err
	}

	var rawURLs []json.RawMessage
	if raw, ok := fields["urls"]; !ok || json.Unmarshal(raw, &rawURLs) != nil || len(rawURLs) == 0 || len(rawURLs) > MaxURLs {
		return AnalyzeRequest{}, services.Invalid(MsgURLCount)
	}
	urls := make([]string, 0, len(rawURLs))
	for _, raw := range rawURLs {
		url, ok := decodeString(raw)
		if !ok || !ValidURL(url) {
			return AnalyzeRequest{}, services.Invalid(MsgInvalidURL)
		}
		urls = append(urls, url)
	}

	req := AnalyzeRequest{URLs: urls}
	if raw, ok := fields["preferences"]; ok && !isNull(raw) {
		prefs, err := decodeStringMap(raw, MsgPreferencesObject)
		if err != nil {
			return AnalyzeRequest{}, err
		}
		req.Preferences = prefs
	}
	return req, nil
}

// ValidURL reports whether s starts with http:// or https:// (any case).
func ValidURL(s string) bool {
	return urlPattern.MatchString(s)
}

// ParseSaveRequest validates a save body: plan and summary must be strings and
// timestamp, when present, a non-negative integer.
func ParseSaveRequest(body []byte) (SaveRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return SaveRequest{}, err
	}
	plan, planOK := decodeString(fields["plan"])
	summary, summaryOK := decodeString(fields["summary"])
	if !planOK || !summaryOK {
		return SaveRequest{}, services.Invalid(MsgSaveFields)
	}

	req := SaveRequest{Plan: plan, Summary: summary}
	if raw, ok := fields["timestamp"]; ok && !isNull(raw) {
		ts, ok := decodeInteger(raw)
		if !ok || ts < 0 {
			return SaveRequest{}, services.Invalid(MsgInvalidTimestamp)
		}
		req.Timestamp = ts
	}
	return req, nil
}

// ParsePreferencesRequest validates a preferences document: a JSON object
// whose values are all strings.
func ParsePreferencesRequest(body []byte) (storage.Preferences, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || isNull(trimmed) {
		return nil, services.Invalid(MsgInvalidPreferences)
	}
	prefs, err := decodeStringMap(trimmed, MsgInvalidPreferences)
	if err != nil {
		return nil, err
	}
	return storage.Preferences(prefs), nil
}

// ParseFeedbackRequest validates a feedback body: a positive integer timestamp
// and a rating of 1 or -1.
func ParseFeedbackRequest(body []byte) (FeedbackRequest, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return FeedbackRequest{}, err
	}
	ts, ok := decodeInteger(fields["timestamp"])
	if !ok || ts <= 0 {
		return FeedbackRequest{}, services.Invalid(MsgInvalidFeedback)
	}
	rating, ok := decodeInteger(fields["rating"])
	if !ok || !storage.Rating(rating).Valid() {
		return FeedbackRequest{}, services.Invalid(MsgInvalidFeedback)
	}
	return FeedbackRequest{Timestamp: ts, Rating: storage.Rating(rating)}, nil
}

// ParseTimestamp validates a timestamp path segment.
func ParseTimestamp(segment string) (int64, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(segment), 10, 64)
	if err != nil || ts <= 0 {
		return 0, services.Invalid(MsgInvalidTimestamp)
	}
	return ts, nil
}

// decodeObject treats an empty body as an empty object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(trimmed) {
		return nil, services.Invalid(MsgInvalidRequestBody)
	}
	var fields map[string]json.RawMessage
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil || fields == nil {
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

func decodeStringMap(raw json.RawMessage, message string) (map[string]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, services.Invalid(message)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, services.Invalid(message)
	}
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		s, ok := decodeString(value)
		if !ok {
			return nil, services.Invalid(MsgPreferenceValues)
		}
		out[key] = s
	}
	return out, nil
}

func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeInteger(raw json.RawMessage) (int64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > maxSafeJSONInteger {
		return 0, false
	}
	return int64(f), true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
