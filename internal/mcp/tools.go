package mcp

import (
	"encoding/json"
	"errors"

	"github.com/blackwell-systems/readfromfile/internal/macro"
)

// ReadResult is returned by the read_from_file tool.
type ReadResult struct {
	Text  string `json:"text"`
	Empty bool   `json:"empty"`
	Path  string `json:"path"`
	Lines int    `json:"lines"`
	Kept  int    `json:"kept"`
}

// DescribeResult is returned by the describe_macro tool.
type DescribeResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BaseDir     string `json:"base_dir,omitempty"`
}

var (
	readSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"path":{"type":"string","description":"File to read; relative paths resolve against base_dir"},` +
		`"base_dir":{"type":"string","description":"Directory for relative paths (defaults to the server's base directory)"}` +
		`},"required":["path"],"additionalProperties":false}`)
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
)

func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "read_from_file",
		Description: macro.Description,
		InputSchema: readSchema,
		Handler:     s.handleReadFromFile,
	})
	s.registerTool(toolDef{
		Name:        "describe_macro",
		Description: "Name, description, and base directory of the ReadFromFile macro.",
		InputSchema: noArgsSchema,
		Handler:     s.handleDescribe,
	})
}

// handleReadFromFile expands args.path. Failures come back as tool errors
// carrying the macro's message.
func (s *Server) handleReadFromFile(args json.RawMessage) (any, error) {
	var params struct {
		Path    string  `json:"path"`
		BaseDir *string `json:"base_dir"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, errors.New("invalid arguments: " + err.Error())
	}

	baseDir := s.m.BaseDir()
	if params.BaseDir != nil {
		baseDir = *params.BaseDir
	}

	out := s.m.Run(params.Path, baseDir)
	if out.Err != nil {
		return nil, errors.New(out.Message)
	}
	text, ok := out.Text()
	return ReadResult{
		Text:  text,
		Empty: !ok,
		Path:  out.Result.Path,
		Lines: out.Result.Lines,
		Kept:  out.Result.Kept,
	}, nil
}

func (s *Server) handleDescribe(json.RawMessage) (any, error) {
	return DescribeResult{
		Name:        macro.Name,
		Description: macro.Description,
		BaseDir:     s.m.BaseDir(),
	}, nil
}
