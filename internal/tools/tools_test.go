package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/LuiccianDev/mcp-word-office/internal/config"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Cfg: config.Config{
			AllowedDirs: []string{t.TempDir()},
			PDFTimeout:  time.Minute,
			RateBurst:   1,
		},
		Log: zerolog.Nop(),
	}
}

func newReq(tool string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	return req
}

// findTool looks a tool up by name in the full set.
func findTool(t *testing.T, deps Deps, name string) Tool {
	t.Helper()
	for _, tool := range All(deps) {
		if tool.Def.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not registered", name)
	return Tool{}
}

// call invokes a tool handler and decodes the JSON envelope.
func call(t *testing.T, deps Deps, name string, args map[string]any) (map[string]any, bool) {
	t.Helper()
	tool := findTool(t, deps, name)
	res, err := tool.Handler(context.Background(), newReq(name, args))
	if err != nil {
		t.Fatalf("%s returned a protocol error: %v", name, err)
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content; got %T", res.Content[0])
	}
	var env map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return env, res.IsError
}

func mustSucceed(t *testing.T, deps Deps, name string, args map[string]any) map[string]any {
	t.Helper()
	env, isErr := call(t, deps, name, args)
	if isErr {
		t.Fatalf("%s failed: %v", name, env["message"])
	}
	return env
}

func mustFail(t *testing.T, deps Deps, name string, args map[string]any) map[string]any {
	t.Helper()
	env, isErr := call(t, deps, name, args)
	if !isErr {
		t.Fatalf("%s unexpectedly succeeded: %v", name, env["message"])
	}
	return env
}

func details(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	d, ok := env["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected details in envelope; got %v", env)
	}
	return d
}

func TestAll_UniqueToolNames(t *testing.T) {
	deps := testDeps(t)
	tools := All(deps)
	if len(tools) != 31 {
		t.Fatalf("expected 31 tools; got %d", len(tools))
	}
	seen := map[string]bool{}
	for _, tool := range tools {
		if tool.Def.Name == "" {
			t.Fatal("tool with empty name")
		}
		if seen[tool.Def.Name] {
			t.Fatalf("duplicate tool name %q", tool.Def.Name)
		}
		seen[tool.Def.Name] = true
		if tool.Handler == nil {
			t.Fatalf("tool %q has no handler", tool.Def.Name)
		}
	}
}

func TestResolve_Sandbox(t *testing.T) {
	deps := testDeps(t)
	root := deps.Cfg.AllowedDirs[0]

	path, err := deps.Resolve("report.docx")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(root, "report.docx") {
		t.Fatalf("relative name resolved to %q", path)
	}

	if _, err := deps.Resolve("../escape.docx"); err == nil {
		t.Fatal("expected traversal outside the sandbox to be rejected")
	}
	if _, err := deps.Resolve("/etc/passwd"); err == nil {
		t.Fatal("expected absolute path outside the sandbox to be rejected")
	}

	abs := filepath.Join(root, "sub", "nested.docx")
	got, err := deps.Resolve(abs)
	if err != nil {
		t.Fatal(err)
	}
	if got != abs {
		t.Fatalf("expected %q; got %q", abs, got)
	}
}

func TestEnsureDocx(t *testing.T) {
	if got := ensureDocx("report"); got != "report.docx" {
		t.Fatalf("expected report.docx; got %q", got)
	}
	if got := ensureDocx("report.docx"); got != "report.docx" {
		t.Fatalf("expected unchanged name; got %q", got)
	}
	if got := ensureDocx("notes.txt"); got != "notes.txt" {
		t.Fatalf("foreign extensions must pass through; got %q", got)
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"red", "FF0000", true},
		{"RED", "FF0000", true},
		{"#00ff00", "00FF00", true},
		{"1A2B3C", "1A2B3C", true},
		{"chartreuse", "", false},
		{"12345", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := normalizeColor(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("normalizeColor(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestTableData(t *testing.T) {
	req := newReq("word_add_table", map[string]any{
		"data": []any{
			[]any{"a", "b"},
			[]any{float64(1), true},
		},
	})
	rows := tableData(req)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows; got %d", len(rows))
	}
	if rows[0][0] != "a" || rows[0][1] != "b" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "true" {
		t.Fatalf("non-string cells must be stringified: %v", rows[1])
	}
	if tableData(newReq("word_add_table", nil)) != nil {
		t.Fatal("missing data must yield nil")
	}
}

func TestDiffPreview(t *testing.T) {
	got := diffPreview("the quick fox", "the slow fox")
	if !strings.Contains(got, "[-quick]") && !strings.Contains(got, "[-qu") {
		t.Fatalf("expected a deletion marker in %q", got)
	}
	if !strings.Contains(got, "[+") {
		t.Fatalf("expected an insertion marker in %q", got)
	}

	// Truncation must not split a multi-byte rune.
	wide := diffPreview("a", "a"+strings.Repeat("ü", 300))
	if !utf8.ValidString(wide) {
		t.Fatalf("truncated preview is not valid UTF-8: %q", wide)
	}
	if !strings.HasSuffix(wide, "...") {
		t.Fatalf("expected truncated preview; got %q", wide)
	}

	long := strings.Repeat("x", 200)
	clipped := clipMiddle(long, 40)
	if len(clipped) >= len(long) {
		t.Fatal("expected long equal spans to be clipped")
	}
	if !strings.Contains(clipped, " ... ") {
		t.Fatalf("expected ellipsis in %q", clipped)
	}
}

func TestCreateDocument_Flow(t *testing.T) {
	deps := testDeps(t)

	env := mustSucceed(t, deps, "word_create_document", map[string]any{
		"filename": "report",
		"title":    "Quarterly Report",
		"author":   "Alex Doe",
	})
	path, _ := details(t, env)["path"].(string)
	if filepath.Base(path) != "report.docx" {
		t.Fatalf("expected .docx appended; got %q", path)
	}
	doc, err := docx.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Properties.Title != "Quarterly Report" || doc.Properties.Author != "Alex Doe" {
		t.Fatalf("core properties not persisted: %+v", doc.Properties)
	}

	env = mustFail(t, deps, "word_create_document", map[string]any{"filename": "report"})
	if env["error_type"] != "validation" {
		t.Fatalf("creating an existing document must be a validation error; got %v", env["error_type"])
	}
}

func TestContentAndInfo_Flow(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "doc.docx"})

	mustSucceed(t, deps, "word_add_heading", map[string]any{
		"filename": "doc.docx", "text": "Introduction", "level": float64(1),
	})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{
		"filename": "doc.docx", "text": "The quick brown fox.",
	})
	mustSucceed(t, deps, "word_add_table", map[string]any{
		"filename": "doc.docx", "rows": float64(2), "cols": float64(2),
		"data": []any{[]any{"h1", "h2"}, []any{"a", "b"}},
	})

	env := mustSucceed(t, deps, "word_get_document_text", map[string]any{"filename": "doc.docx"})
	text, _ := details(t, env)["text"].(string)
	for _, want := range []string{"Introduction", "The quick brown fox.", "h1\th2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("extracted text missing %q:\n%s", want, text)
		}
	}

	env = mustSucceed(t, deps, "word_get_document_info", map[string]any{"filename": "doc.docx"})
	if _, ok := details(t, env)["info"]; !ok {
		t.Fatal("expected info payload")
	}

	env = mustSucceed(t, deps, "word_get_paragraph_text", map[string]any{
		"filename": "doc.docx", "paragraph_index": float64(0),
	})
	d := details(t, env)
	if d["text"] != "Introduction" || d["style"] != "Heading 1" {
		t.Fatalf("unexpected paragraph payload: %v", d)
	}

	env = mustFail(t, deps, "word_get_paragraph_text", map[string]any{
		"filename": "doc.docx", "paragraph_index": float64(99),
	})
	if env["error_type"] != "validation" {
		t.Fatalf("out-of-range index must be validation; got %v", env["error_type"])
	}
}

func TestSearchAndReplace_Flow(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "doc.docx"})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{
		"filename": "doc.docx", "text": "alpha beta alpha",
	})

	env := mustSucceed(t, deps, "word_search_and_replace", map[string]any{
		"filename": "doc.docx", "find_text": "alpha", "replace_text": "gamma",
	})
	d := details(t, env)
	if d["replacements"] != float64(2) {
		t.Fatalf("expected 2 replacements; got %v", d["replacements"])
	}

	env = mustSucceed(t, deps, "word_find_text", map[string]any{
		"filename": "doc.docx", "text_to_find": "gamma",
	})
	matches, _ := details(t, env)["matches"].([]any)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches; got %d", len(matches))
	}

	// match_case defaults to true.
	env = mustSucceed(t, deps, "word_find_text", map[string]any{
		"filename": "doc.docx", "text_to_find": "GAMMA",
	})
	matches, _ = details(t, env)["matches"].([]any)
	if len(matches) != 0 {
		t.Fatalf("case-sensitive search must not match; got %d", len(matches))
	}
}

func TestMissingDocument_IsFileNotFound(t *testing.T) {
	deps := testDeps(t)
	env := mustFail(t, deps, "word_get_document_text", map[string]any{"filename": "ghost.docx"})
	if env["error_type"] != "file_not_found" {
		t.Fatalf("expected file_not_found; got %v", env["error_type"])
	}
}

func TestFootnote_Flow(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "doc.docx"})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{
		"filename": "doc.docx", "text": "A cited claim.",
	})

	env := mustSucceed(t, deps, "word_add_footnote", map[string]any{
		"filename": "doc.docx", "paragraph_index": float64(0), "text": "Source: somewhere.",
	})
	if details(t, env)["number"] != float64(1) {
		t.Fatalf("expected footnote number 1; got %v", details(t, env)["number"])
	}

	env = mustSucceed(t, deps, "word_convert_footnotes_to_endnotes", map[string]any{
		"filename": "doc.docx",
	})
	if details(t, env)["converted"] != float64(1) {
		t.Fatalf("expected 1 converted footnote; got %v", details(t, env)["converted"])
	}

	env = mustSucceed(t, deps, "word_get_document_text", map[string]any{"filename": "doc.docx"})
	text, _ := details(t, env)["text"].(string)
	if !strings.Contains(text, "Endnotes") || strings.Contains(text, "Footnotes") {
		t.Fatalf("expected footnotes moved to endnotes:\n%s", text)
	}
}

func TestProtection_Flow(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "doc.docx"})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{
		"filename": "doc.docx", "text": "Confidential content.",
	})

	mustSucceed(t, deps, "word_add_digital_signature", map[string]any{
		"filename": "doc.docx", "signer_name": "Alex Doe", "reason": "review",
	})

	mustSucceed(t, deps, "word_protect_document", map[string]any{
		"filename": "doc.docx", "password": "s3cret",
	})

	// A protected file is no longer a valid package, so validated tools
	// refuse it.
	env := mustFail(t, deps, "word_get_document_text", map[string]any{"filename": "doc.docx"})
	if env["error_type"] != "document_processing" {
		t.Fatalf("expected document_processing failure on encrypted file; got %v", env["error_type"])
	}

	env = mustFail(t, deps, "word_unprotect_document", map[string]any{
		"filename": "doc.docx", "password": "wrong",
	})
	if env["error_type"] != "permission_denied" {
		t.Fatalf("wrong password must be permission_denied; got %v", env["error_type"])
	}

	mustSucceed(t, deps, "word_unprotect_document", map[string]any{
		"filename": "doc.docx", "password": "s3cret",
	})

	env = mustSucceed(t, deps, "word_verify_document", map[string]any{
		"filename": "doc.docx", "password": "anything",
	})
	d := details(t, env)
	ver, _ := d["verification"].(map[string]any)
	if ver["signature_count"] != float64(1) || ver["signatures_valid"] != true {
		t.Fatalf("expected one valid signature; got %v", ver)
	}
}

func TestUnprotect_MissingFileIsFileNotFound(t *testing.T) {
	deps := testDeps(t)
	env := mustFail(t, deps, "word_unprotect_document", map[string]any{
		"filename": "ghost.docx", "password": "pw",
	})
	if env["error_type"] != "file_not_found" {
		t.Fatalf("expected file_not_found; got %v", env["error_type"])
	}
	if _, err := os.Stat(filepath.Join(deps.Cfg.AllowedDirs[0], "ghost.docx")); !os.IsNotExist(err) {
		t.Fatal("validation must not create the file")
	}
}

func TestRestrictedEditing_RequiresSections(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "doc.docx"})

	env := mustFail(t, deps, "word_add_restricted_editing", map[string]any{
		"filename": "doc.docx", "password": "pw", "editable_sections": []any{},
	})
	if env["error_type"] != "validation" {
		t.Fatalf("empty section list must be validation; got %v", env["error_type"])
	}

	mustSucceed(t, deps, "word_add_restricted_editing", map[string]any{
		"filename": "doc.docx", "password": "pw", "editable_sections": []any{"summary"},
	})
	env = mustSucceed(t, deps, "word_verify_document", map[string]any{"filename": "doc.docx"})
	ver, _ := details(t, env)["verification"].(map[string]any)
	if ver["restricted"] != true {
		t.Fatalf("expected restricted state; got %v", ver)
	}
}

func TestCopyAndMerge_Flow(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "a.docx"})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{"filename": "a.docx", "text": "first"})
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "b.docx"})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{"filename": "b.docx", "text": "second"})

	env := mustSucceed(t, deps, "word_copy_document", map[string]any{"source_filename": "a.docx"})
	dst, _ := details(t, env)["destination"].(string)
	if filepath.Base(dst) != "a_copy.docx" {
		t.Fatalf("expected default copy name; got %q", dst)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("copy missing: %v", err)
	}

	mustSucceed(t, deps, "word_merge_documents", map[string]any{
		"target_filename":  "merged.docx",
		"source_filenames": []any{"a.docx", "b.docx"},
	})
	env = mustSucceed(t, deps, "word_get_document_text", map[string]any{"filename": "merged.docx"})
	text, _ := details(t, env)["text"].(string)
	if !strings.Contains(text, "first") || !strings.Contains(text, "second") {
		t.Fatalf("merged text incomplete:\n%s", text)
	}

	env = mustSucceed(t, deps, "word_list_available_documents", nil)
	docs, _ := details(t, env)["documents"].([]any)
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents listed; got %d", len(docs))
	}
}

func TestCopyDocument_UppercaseExtensionDefaultName(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "REPORT.DOCX"})

	env := mustSucceed(t, deps, "word_copy_document", map[string]any{"source_filename": "REPORT.DOCX"})
	dst, _ := details(t, env)["destination"].(string)
	if filepath.Base(dst) != "REPORT_copy.docx" {
		t.Fatalf("expected extension trimmed case-insensitively; got %q", dst)
	}
}

func TestCompareDocuments_Flow(t *testing.T) {
	deps := testDeps(t)
	mustSucceed(t, deps, "word_create_document", map[string]any{"filename": "a.docx"})
	mustSucceed(t, deps, "word_add_paragraph", map[string]any{"filename": "a.docx", "text": "shared line"})
	mustSucceed(t, deps, "word_copy_document", map[string]any{
		"source_filename": "a.docx", "destination_filename": "b.docx",
	})

	env := mustSucceed(t, deps, "word_compare_documents", map[string]any{
		"filename": "a.docx", "other_filename": "b.docx",
	})
	if details(t, env)["identical"] != true {
		t.Fatalf("expected identical documents; got %v", details(t, env))
	}

	mustSucceed(t, deps, "word_add_paragraph", map[string]any{"filename": "b.docx", "text": "extra"})
	env = mustSucceed(t, deps, "word_compare_documents", map[string]any{
		"filename": "a.docx", "other_filename": "b.docx",
	})
	d := details(t, env)
	if d["identical"] != false {
		t.Fatal("expected documents to differ")
	}
	if d["characters_added"] == float64(0) {
		t.Fatalf("expected added characters; got %v", d["characters_added"])
	}
	if _, ok := d["preview"].(string); !ok {
		t.Fatal("expected a diff preview")
	}
}
