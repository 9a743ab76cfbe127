package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"quiz-analysis-service/internal/domain"
)

const responseSchemaURL = "schema://analyse-answers-response.json"

// responseSchemaDoc describes {success, analysis: {topics: [[name, count], ...]}}.
// analysis is required only when success is true.
const responseSchemaDoc = `{
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "analysis": {
      "type": "object",
      "required": ["topics"],
      "properties": {
        "topics": {
          "type": "array",
          "items": {
            "type": "array",
            "minItems": 2,
            "maxItems": 2,
            "prefixItems": [
              {"type": "string"},
              {"type": "integer", "minimum": 0, "maximum": 2147483647}
            ]
          }
        }
      }
    }
  },
  "if": {"properties": {"success": {"const": true}}},
  "then": {"required": ["analysis"]}
}`

var responseSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(responseSchemaDoc))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(responseSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(responseSchemaURL)
})

type analysisResponse struct {
	Success  bool `json:"success"`
	Analysis struct {
		Topics []topicPair `json:"topics"`
	} `json:"analysis"`
}

// topicPair decodes a [name, count] array.
type topicPair domain.TopicCount

func (p *topicPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("topic pair has %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Topic); err != nil {
		return fmt.Errorf("topic name: %w", err)
	}
	if bytes.HasPrefix(raw[1], []byte(`"`)) {
		return fmt.Errorf("topic count %s is not a number", raw[1])
	}
	var num json.Number
	if err := json.Unmarshal(raw[1], &num); err != nil {
		return fmt.Errorf("topic count: %w", err)
	}
	count, err := strconv.ParseInt(num.String(), 10, 32)
	if err != nil || count < 0 {
		return fmt.Errorf("topic count %s out of range", num)
	}
	p.Count = int(count)
	return nil
}

// decodeAnalysis validates and decodes a classify response body.
func decodeAnalysis(body []byte) ([]domain.TopicCount, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	schema, err := responseSchema()
	if err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var resp analysisResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ErrInvalidResponse{Content: body, Err: err}
	}
	if !resp.Success {
		return nil, &ErrRejected{}
	}
	topics := make([]domain.TopicCount, len(resp.Analysis.Topics))
	for i, p := range resp.Analysis.Topics {
		topics[i] = domain.TopicCount(p)
	}
	return topics, nil
}
