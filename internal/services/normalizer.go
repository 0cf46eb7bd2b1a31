package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"alfredoptarigan/resume-matcher/internal/models"
)

var jsonFence = regexp.MustCompile("(?is)```json[ \t]*\r?\n?(.*?)```")

// StripFences returns the body of the first ```json fenced block in reply, or
// reply unchanged when there is none.
func StripFences(reply string) string {
	if m := jsonFence.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return reply
}

type matchReply struct {
	MatchPercentage float64 `json:"match_percentage"`
	Verdict         string  `json:"verdict"`
	Analysis        string  `json:"analysis"`
}

type improveReply struct {
	Strengths   string `json:"strengths"`
	Gaps        string `json:"gaps"`
	Suggestions string `json:"suggestions"`
}

// NormalizeMatch parses a match reply into a MatchResult. The demo identity
// and drive link are left for the caller to fill in.
func NormalizeMatch(reply string) (*models.MatchResult, error) {
	var parsed matchReply
	if err := decodeJSONReply(reply, &parsed, "match_percentage", "verdict", "analysis"); err != nil {
		return nil, err
	}

	if p := parsed.MatchPercentage; math.IsNaN(p) || p < 0 || p > 100 {
		return nil, unparsable(reply, nil,
			"LLM response could not be parsed: match_percentage %v is outside 0-100", parsed.MatchPercentage)
	}

	return &models.MatchResult{
		MatchPercentage: parsed.MatchPercentage,
		Verdict:         parsed.Verdict,
		Analysis:        parsed.Analysis,
	}, nil
}

func NormalizeImprovement(reply string) (*models.ResumeImprovement, error) {
	var parsed improveReply
	if err := decodeJSONReply(reply, &parsed, "strengths", "gaps", "suggestions"); err != nil {
		return nil, err
	}

	return &models.ResumeImprovement{
		Strengths:   parsed.Strengths,
		Gaps:        parsed.Gaps,
		Suggestions: parsed.Suggestions,
	}, nil
}

// NormalizeText is the free-text shape: the stripped reply is the result.
func NormalizeText(reply string) (string, error) {
	text := strings.TrimSpace(StripFences(reply))
	if text == "" {
		return "", unparsable(reply, nil, "LLM response could not be parsed: empty reply")
	}
	return text, nil
}

// decodeJSONReply decodes reply into target. Every required key must be
// present and non-null; numbers and strings are coerced by coerceHook and a
// failed coercion rejects the whole reply.
func decodeJSONReply(reply string, target any, required ...string) error {
	data, err := parseJSONObject(StripFences(reply))
	if err != nil {
		return unparsable(reply, err, "LLM response could not be parsed: %v", err)
	}

	var missing []string
	for _, key := range required {
		if v, ok := lookupKey(data, key); !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return unparsable(reply, nil, "LLM response could not be parsed: missing keys %s", strings.Join(missing, ", "))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncKind(coerceHook),
		ErrorUnset: true,
		TagName:    "json",
		Result:     target,
	})
	if err != nil {
		return newError(KindUnexpected, err, "failed to create response decoder")
	}

	if err := decoder.Decode(data); err != nil {
		return unparsable(reply, err, "LLM response could not be parsed: %v", err)
	}

	return nil
}

// parseJSONObject accepts a bare JSON object or, failing that, the span
// between the first '{' and the last '}' so prose around the object is
// ignored.
func parseJSONObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)

	var data map[string]any
	firstErr := json.Unmarshal([]byte(text), &data)
	if firstErr == nil && data != nil {
		return data, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		data = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &data); err == nil && data != nil {
			return data, nil
		}
	}

	if firstErr == nil {
		firstErr = errors.New("reply is not a JSON object")
	}
	return nil, firstErr
}

func lookupKey(data map[string]any, key string) (any, bool) {
	if v, ok := data[key]; ok {
		return v, true
	}
	for k, v := range data {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func coerceHook(from reflect.Kind, to reflect.Kind, data any) (any, error) {
	switch to {
	case reflect.Float32, reflect.Float64:
		return coerceNumber(from, data)
	case reflect.String:
		return coerceString(from, data)
	default:
		return data, nil
	}
}

func coerceNumber(from reflect.Kind, data any) (any, error) {
	switch from {
	case reflect.Float64, reflect.Float32, reflect.Int, reflect.Int64:
		return data, nil
	case reflect.String:
		s := strings.TrimSpace(data.(string))
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if s == "" {
			return nil, errors.New("empty numeric value")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", data)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("expected a number, got %v", from)
	}
}

func coerceString(from reflect.Kind, data any) (any, error) {
	switch from {
	case reflect.String:
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return nil, errors.New("empty text value")
		}
		return s, nil
	case reflect.Slice:
		items, ok := data.([]any)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", data)
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of text, got element %T", item)
			}
			if s = strings.TrimSpace(s); s != "" {
				lines = append(lines, s)
			}
		}
		if len(lines) == 0 {
			return nil, errors.New("empty text value")
		}
		return strings.Join(lines, "\n"), nil
	default:
		return nil, fmt.Errorf("expected text, got %v", from)
	}
}
