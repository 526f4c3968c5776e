package research

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/errs"
)

const previewLen = 200

//go:embed schema.json
var schemaJSON string

var (
	recordSchema = mustSchema(schemaJSON)

	fencePattern = regexp.MustCompile("(?s)```[ \\t]*(?i:json)?[ \\t]*\\r?\\n?(.*?)```")

	refusalPhrases = []string{
		"i can't",
		"i cannot",
		"i'm unable",
		"i am unable",
		"unable to",
		"don't have access",
		"cannot access",
	}
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("research: invalid record schema: " + err.Error())
	}
	return s
}

// Stage is one step of the extraction pipeline. It returns the candidate
// handed to the next stage, or a classified failure.
type Stage func(text string) (string, error)

// Extractor recovers a CompanyResearch record from the free-form text of a
// completion that was asked to answer with JSON.
type Extractor struct {
	repair bool
	logger *zap.Logger
}

// NewExtractor returns an Extractor. With repair set, a candidate that fails
// to parse is passed once through jsonrepair before being rejected.
func NewExtractor(repair bool, logger *zap.Logger) *Extractor {
	return &Extractor{repair: repair, logger: logger}
}

// Stages returns the text stages run before decoding, in order.
func Stages() []Stage {
	return []Stage{DetectRefusal, StripFence, LocateObject}
}

// Extract runs the pipeline: refusal check, fence stripping, object location,
// decoding and validation. The record is returned exactly as the model
// supplied it.
func (e *Extractor) Extract(raw string) (*CompanyResearch, error) {
	text := strings.TrimSpace(raw)
	for _, stage := range Stages() {
		var err error
		if text, err = stage(text); err != nil {
			e.logger.Warn("research reply rejected",
				zap.String("kind", string(errs.KindOf(err))),
				zap.String("preview", errs.Preview(raw, 300)),
			)
			return nil, err
		}
	}

	doc, parsed, err := e.decode(text)
	if err != nil {
		e.logger.Warn("research reply is not valid JSON", zap.String("preview", errs.Preview(text, 500)))
		return nil, err
	}
	return Validate(doc, parsed)
}

// DetectRefusal fails with ModelRefusal when the prose around any JSON in
// text declines the task. JSON content itself is not scanned, so a generated
// prompt that happens to say "I cannot" is not mistaken for a refusal.
func DetectRefusal(text string) (string, error) {
	if isRefusal(normalizeApostrophes(strings.ToLower(prose(text)))) {
		return "", errs.New(errs.ModelRefusal,
			"The research model refused the request. This usually means: 1) Invalid/inaccessible URL, 2) API key issue, or 3) Rate limit. Response: %s",
			errs.Preview(text, previewLen))
	}
	return text, nil
}

func isRefusal(lower string) bool {
	if strings.Contains(lower, "sorry") && strings.Contains(lower, "can't") {
		return true
	}
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// StripFence replaces text with the interior of its first fenced code block,
// if it has one.
func StripFence(text string) (string, error) {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return text, nil
}

// LocateObject narrows text that does not already start with an object to its
// first top-level {...} span. NoStructuredData when there is none.
func LocateObject(text string) (string, error) {
	if strings.HasPrefix(text, "{") {
		return text, nil
	}
	start, end, ok := objectSpan(text)
	if !ok {
		return "", errs.New(errs.NoStructuredData, "No JSON found in research response. Response: %s", errs.Preview(text, previewLen))
	}
	return text[start:end], nil
}

func (e *Extractor) decode(candidate string) (map[string]any, string, error) {
	var doc map[string]any
	err := json.Unmarshal([]byte(candidate), &doc)
	if err == nil && doc != nil {
		return doc, candidate, nil
	}

	if e.repair {
		if repaired, rerr := jsonrepair.JSONRepair(candidate); rerr == nil {
			var fixed map[string]any
			if json.Unmarshal([]byte(repaired), &fixed) == nil && fixed != nil {
				e.logger.Info("research reply repaired", zap.Int("original_bytes", len(candidate)), zap.Int("repaired_bytes", len(repaired)))
				return fixed, repaired, nil
			}
		}
	}

	if err == nil {
		return nil, "", errs.New(errs.MalformedPayload, "Invalid JSON from research model: expected an object. Response: %s", errs.Preview(candidate, previewLen))
	}
	return nil, "", errs.Wrap(errs.MalformedPayload, err, "Invalid JSON from research model. Response: %s", errs.Preview(candidate, previewLen))
}

// Validate checks doc against the record schema and decodes it. Problems with
// a required field are IncompleteRecord; any other mismatch is
// MalformedPayload.
func Validate(doc map[string]any, raw string) (*CompanyResearch, error) {
	result, err := recordSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, errs.Wrap(errs.MalformedPayload, err, "research response could not be validated")
	}

	if !result.Valid() {
		required := map[string]bool{}
		for _, f := range RequiredFields {
			required[f] = true
		}
		incomplete := false
		problems := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			field := re.Field()
			if re.Type() == "required" {
				if p, ok := re.Details()["property"].(string); ok {
					field = p
				}
			}
			if required[field] {
				incomplete = true
			}
			problems = append(problems, re.String())
		}
		if incomplete {
			if field, ok := refusalField(doc); ok {
				return nil, errs.New(errs.ModelRefusal,
					"The research model refused the request in field %q. Response: %s",
					field, errs.Preview(raw, previewLen))
			}
			return nil, errs.New(errs.IncompleteRecord,
				"Missing required fields in research response. Expected: %s. Got: %s",
				strings.Join(RequiredFields, ", "), strings.Join(presentKeys(doc), ", "))
		}
		return nil, errs.New(errs.MalformedPayload, "research response has unexpected field types: %s", strings.Join(problems, "; "))
	}

	var rec CompanyResearch
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errs.Wrap(errs.MalformedPayload, err, "research response could not be decoded")
	}
	return &rec, nil
}

// refusalField returns the first field, in key order, whose string value
// reads as a refusal. langfusePrompt is skipped: a generated chatbot prompt
// routinely says what the assistant cannot do.
func refusalField(doc map[string]any) (string, bool) {
	for _, k := range presentKeys(doc) {
		if k == "langfusePrompt" {
			continue
		}
		var values []string
		switch v := doc[k].(type) {
		case string:
			values = []string{v}
		case []any:
			for _, item := range v {
				if str, ok := item.(string); ok {
					values = append(values, str)
				}
			}
		}
		for _, v := range values {
			if isRefusal(normalizeApostrophes(strings.ToLower(v))) {
				return k, true
			}
		}
	}
	return "", false
}

func presentKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// prose returns text with its first object span blanked out, along with any
// fenced block that holds an object. A fenced block without an object is
// kept, since a refusal may arrive wrapped in one.
func prose(text string) string {
	text = fencePattern.ReplaceAllStringFunc(text, func(block string) string {
		interior := fencePattern.FindStringSubmatch(block)[1]
		if _, _, ok := objectSpan(interior); ok {
			return " "
		}
		return " " + interior + " "
	})
	if start, end, ok := objectSpan(text); ok {
		text = text[:start] + " " + text[end:]
	}
	return text
}

// objectSpan finds the first balanced {...} in s, skipping braces inside JSON
// strings. An unbalanced object falls back to the first '{' through the last
// '}' so the decoder can report the syntax error.
func objectSpan(s string) (start, end int, ok bool) {
	start = strings.IndexByte(s, '{')
	if start < 0 {
		return 0, 0, false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}
	if last := strings.LastIndexByte(s, '}'); last > start {
		return start, last + 1, true
	}
	return 0, 0, false
}

func normalizeApostrophes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'").Replace(s)
}
