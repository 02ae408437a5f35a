package amtp

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/message.schema.json
var messageSchemaBytes []byte

var (
	messageSchema *jsonschema.Schema
	compileOnce   sync.Once
	compileErr    error
	printer       = message.NewPrinter(language.English)
)

// SchemaIssue is one violation found in an outbound message.
type SchemaIssue struct {
	Path    string // Instance location (e.g., "/recipients/0")
	Message string
}

// SchemaError reports an outbound message that does not match the
// envelope schema. It is returned before any request is sent.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "invalid message: " + strings.Join(parts, "; ")
}

func getMessageSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(messageSchemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("message.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		messageSchema, compileErr = c.Compile("message.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return messageSchema, compileErr
}

// Validate checks m against the embedded envelope schema. A *SchemaError
// lists every violation; any other error means the schema itself is broken.
func (m *OutboundMessage) Validate() error {
	schema, err := getMessageSchema()
	if err != nil {
		return fmt.Errorf("loading message schema: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("preparing message for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("unexpected validation error type: %w", err)
	}

	var issues []SchemaIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		issues = []SchemaIssue{{Message: ve.Error()}}
	}
	return &SchemaError{Issues: issues}
}

// collectIssues walks the error tree and keeps the leaves, which carry the
// specific property that failed.
func collectIssues(ve *jsonschema.ValidationError, issues *[]SchemaIssue) {
	if len(ve.Causes) == 0 {
		path := ""
		if len(ve.InstanceLocation) > 0 {
			path = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		msg := ve.Error()
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}
		*issues = append(*issues, SchemaIssue{Path: path, Message: msg})
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}
