// Package mcpsurface exposes editorstate's commands (SPEC_FULL.md §6) as
// MCP tools over stdio. Adapted from the teacher's pkg/mcp/server.go and
// tools.go — that file is a //go:build ignore draft in the teacher; here it
// is made the live, compiled command surface, generalized from three
// analysis tools to ten editor commands. get_current_language_theme and
// get_editor_config are not exposed as tools.
package mcpsurface

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/TodayNightt/branchy-text-editor/internal/editorerr"
	"github.com/TodayNightt/branchy-text-editor/internal/editorstate"
	"github.com/TodayNightt/branchy-text-editor/internal/filetable"
	"github.com/TodayNightt/branchy-text-editor/internal/fsinfo"
	"github.com/TodayNightt/branchy-text-editor/internal/langregistry"
	"github.com/TodayNightt/branchy-text-editor/internal/parserpool"
)

// Tool name constants, one per exposed §6 command.
const (
	ToolGetFileSystemInfo          = "get_file_system_info"
	ToolOpenFile                   = "open_file"
	ToolCloseFile                  = "close_file"
	ToolGetSourceCodeIfAny         = "get_source_code_if_any"
	ToolSaveFile                   = "save_file"
	ToolHandleFileChanges          = "handle_file_changes"
	ToolSetHighlights              = "set_highlights"
	ToolReset                      = "reset"
	ToolGetTokensLegend            = "get_tokens_legend"
	ToolGetCurrentlySupportedLangs = "get_currently_supported_language"
)

// ToolOutput is a generic wrapper for tool results, matching the teacher's
// pkg/mcp/tools.go ToolOutput shape exactly.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	// ToResponse's message is already the fully formatted "Kind::message"
	// wire string (see editorerr.ToResponse); reformatting it behind kind
	// here would double the prefix.
	_, message := editorerr.ToResponse(err)

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: message}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}

// GetFileSystemInfoInput is the input schema for get_file_system_info.
type GetFileSystemInfoInput struct {
	Directory string `json:"directory,omitempty" jsonschema:"directory to list; defaults to the user's home directory"`
}

// OpenFileInput is the input schema for open_file.
type OpenFileInput struct {
	Path string `json:"path" jsonschema:"path to the file to open"`
}

// FileIDInput is the shared input schema for commands keyed by file id.
type FileIDInput struct {
	ID uint32 `json:"id" jsonschema:"identifier returned by open_file"`
}

// HandleFileChangesInput is the input schema for handle_file_changes.
type HandleFileChangesInput struct {
	ID        uint32           `json:"id"                  jsonschema:"identifier returned by open_file"`
	Buffer    string           `json:"buffer"               jsonschema:"the file's new full contents"`
	EditStart *EditDescriptor  `json:"edit,omitempty"       jsonschema:"optional incremental edit descriptor"`
}

// EditDescriptor mirrors SPEC_FULL.md §6's edit descriptor wire shape.
type EditDescriptor struct {
	StartByte      uint32     `json:"start_byte"`
	OldEndByte     uint32     `json:"old_end_byte"`
	NewEndByte     uint32     `json:"new_end_byte"`
	StartPosition  PointInput `json:"start_position"`
	OldEndPosition PointInput `json:"old_end_position"`
	NewEndPosition PointInput `json:"new_end_position"`
}

// PointInput mirrors a (row, column) position on the wire.
type PointInput struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

func (e *EditDescriptor) toParserpool() parserpool.EditInput {
	return parserpool.EditInput{
		StartIndex:  e.StartByte,
		OldEndIndex: e.OldEndByte,
		NewEndIndex: e.NewEndByte,
		StartPoint:  parserpool.Point{Row: e.StartPosition.Row, Column: e.StartPosition.Column},
		OldEndPoint: parserpool.Point{Row: e.OldEndPosition.Row, Column: e.OldEndPosition.Column},
		NewEndPoint: parserpool.Point{Row: e.NewEndPosition.Row, Column: e.NewEndPosition.Column},
	}
}

// SetHighlightsInput is the input schema for set_highlights.
type SetHighlightsInput struct {
	ID       uint32 `json:"id"                jsonschema:"identifier returned by open_file"`
	SubBuffer string `json:"sub_buffer"        jsonschema:"the (sub-)buffer text to highlight"`
	StartRow uint32 `json:"start_row"`
	StartCol uint32 `json:"start_col"`
	EndRow   uint32 `json:"end_row"`
	EndCol   uint32 `json:"end_col"`
}

// GetTokensLegendInput is the input schema for get_tokens_legend.
type GetTokensLegendInput struct {
	Language string `json:"language" jsonschema:"a supported LanguageTag (e.g. javascript, python, rust)"`
}

// EmptyInput is used by commands that take no arguments.
type EmptyInput struct{}

func handleGetFileSystemInfo(_ context.Context, _ *mcpsdk.CallToolRequest, in GetFileSystemInfoInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	info, err := fsinfo.Get(in.Directory)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(info)
}

func (s *Surface) handleOpenFile(_ context.Context, _ *mcpsdk.CallToolRequest, in OpenFileInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	res, err := s.state.OpenFile(in.Path)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(res)
}

func (s *Surface) handleCloseFile(_ context.Context, _ *mcpsdk.CallToolRequest, in FileIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := s.state.CloseFile(filetable.FileID(in.ID)); err != nil {
		return errorResult(err)
	}

	return jsonResult(struct{}{})
}

func (s *Surface) handleGetSourceCodeIfAny(ctx context.Context, _ *mcpsdk.CallToolRequest, in FileIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	buf, err := s.state.GetSourceCodeIfAny(ctx, filetable.FileID(in.ID))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(string(buf))
}

func (s *Surface) handleSaveFile(_ context.Context, _ *mcpsdk.CallToolRequest, in FileIDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := s.state.SaveFile(filetable.FileID(in.ID)); err != nil {
		return errorResult(err)
	}

	return jsonResult(struct{}{})
}

func (s *Surface) handleFileChanges(ctx context.Context, _ *mcpsdk.CallToolRequest, in HandleFileChangesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	var edit *parserpool.EditInput
	if in.EditStart != nil {
		e := in.EditStart.toParserpool()
		edit = &e
	}

	if err := s.state.HandleFileChanges(ctx, filetable.FileID(in.ID), []byte(in.Buffer), edit); err != nil {
		return errorResult(err)
	}

	return jsonResult(struct{}{})
}

func (s *Surface) handleSetHighlights(_ context.Context, _ *mcpsdk.CallToolRequest, in SetHighlightsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	rng := editorstate.RangePoint{StartRow: in.StartRow, StartCol: in.StartCol, EndRow: in.EndRow, EndCol: in.EndCol}

	stream, err := s.state.SetHighlights(filetable.FileID(in.ID), []byte(in.SubBuffer), rng)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(stream)
}

func (s *Surface) handleReset(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := s.state.Reset(); err != nil {
		return errorResult(err)
	}

	return jsonResult(struct{}{})
}

func (s *Surface) handleGetTokensLegend(_ context.Context, _ *mcpsdk.CallToolRequest, in GetTokensLegendInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	legend, err := s.state.GetTokensLegend(langregistry.LanguageTag(in.Language))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(legend)
}

func (s *Surface) handleGetCurrentlySupportedLanguage(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return jsonResult(s.state.GetCurrentlySupportedLanguage())
}
