package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON extracts and unmarshals the first JSON object in an LLM response.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	if end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}
	var result T
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, response[start:end+1])
	}
	return result, nil
}

// ParseJSONList extracts and unmarshals a JSON array of T from an LLM
// response. Models sometimes return a bare object where an array was asked
// for; in that case the object is wrapped so callers always get a list.
func ParseJSONList[T any](response string) ([]T, error) {
	arrStart := strings.Index(response, "[")
	objStart := strings.Index(response, "{")

	if arrStart == -1 || (objStart != -1 && objStart < arrStart) {
		if objStart == -1 {
			return nil, fmt.Errorf("no JSON array found in response (missing '[')")
		}
		single, err := ParseJSON[T](response)
		if err != nil {
			return nil, err
		}
		return []T{single}, nil
	}

	end := strings.LastIndex(response, "]")
	if end < arrStart {
		return nil, fmt.Errorf("no JSON array found in response (missing ']')")
	}
	var result []T
	if err := json.Unmarshal([]byte(response[arrStart:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON array: %w\nData: %s", err, response[arrStart:end+1])
	}
	return result, nil
}
