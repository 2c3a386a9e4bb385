package worderr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestClassify_TaggedKinds(t *testing.T) {
	cases := []struct {
		err         error
		wantType    Kind
		wantRecover bool
	}{
		{Processing("broken body"), KindDocumentProcessing, true},
		{Validation("bad level"), KindValidation, false},
		{FileOp("disk full"), KindFileOperation, true},
		{Style("no such style"), KindStyle, true},
		{Config("bad dirs"), KindConfiguration, false},
		{New(KindFileNotFound, "gone"), KindFileNotFound, false},
		{New(KindPermissionDenied, "nope"), KindPermissionDenied, false},
	}
	for _, tc := range cases {
		got := Classify(tc.err)
		if got.Type != tc.wantType {
			t.Fatalf("Classify(%v): expected type %q; got %q", tc.err, tc.wantType, got.Type)
		}
		if got.Recoverable != tc.wantRecover {
			t.Fatalf("Classify(%v): expected recoverable=%v; got %v", tc.err, tc.wantRecover, got.Recoverable)
		}
		if got.Message != tc.err.Error() {
			t.Fatalf("expected message %q; got %q", tc.err.Error(), got.Message)
		}
	}
}

func TestClassify_WrappedTagWins(t *testing.T) {
	inner := Style("style %q missing", "Fancy")
	wrapped := fmt.Errorf("applying format: %w", inner)

	got := Classify(wrapped)
	if got.Type != KindStyle {
		t.Fatalf("expected style classification through wrapping; got %q", got.Type)
	}
	if !strings.Contains(got.Message, "applying format") {
		t.Fatalf("expected outer context in message; got %q", got.Message)
	}
}

func TestClassify_ForeignErrors(t *testing.T) {
	_, err := os.Open("/definitely/not/here.docx")
	if err == nil {
		t.Fatal("expected open to fail")
	}
	got := Classify(err)
	if got.Type != KindFileNotFound {
		t.Fatalf("expected file_not_found; got %q", got.Type)
	}
	if got.Recoverable {
		t.Fatal("file_not_found must not be recoverable")
	}

	perm := fmt.Errorf("save: %w", os.ErrPermission)
	if c := Classify(perm); c.Type != KindPermissionDenied {
		t.Fatalf("expected permission_denied; got %q", c.Type)
	}

	// A path error that is neither not-exist nor permission lands on the
	// generic file_operation entry, which must stay behind the specific ones.
	pe := &fs.PathError{Op: "write", Path: "a.docx", Err: errors.New("device busy")}
	if c := Classify(pe); c.Type != KindFileOperation {
		t.Fatalf("expected file_operation; got %q", c.Type)
	}
}

func TestClassify_UnknownFallback(t *testing.T) {
	got := Classify(errors.New("novel failure"))
	if got.Type != KindUnknown {
		t.Fatalf("expected unknown; got %q", got.Type)
	}
	if !got.Recoverable {
		t.Fatal("unknown must default to recoverable=true")
	}
}

func TestSuggestion(t *testing.T) {
	if s := Suggestion(KindStyle); !strings.Contains(s, "style name") {
		t.Fatalf("unexpected style suggestion %q", s)
	}
	if s := Suggestion(KindUnknown); s != "" {
		t.Fatalf("expected no suggestion for unknown; got %q", s)
	}
}

func TestHandle_ContextParts(t *testing.T) {
	err := errors.New("merge exploded")

	full := Handle(err, "report.docx", "merge documents")
	if !strings.Contains(full.Message, "report.docx") || !strings.Contains(full.Message, "merge documents") {
		t.Fatalf("expected both context parts; got %q", full.Message)
	}
	if !strings.Contains(full.Message, "(File: report.docx, Operation: merge documents)") {
		t.Fatalf("unexpected context format: %q", full.Message)
	}

	fileOnly := Handle(err, "report.docx", "")
	if !strings.Contains(fileOnly.Message, "(File: report.docx)") {
		t.Fatalf("expected file-only parenthetical; got %q", fileOnly.Message)
	}

	bare := Handle(err, "", "")
	if bare.Message != "merge exploded" {
		t.Fatalf("expected raw message with no parenthetical; got %q", bare.Message)
	}
	if bare.Status != "error" {
		t.Fatalf("expected status=error; got %q", bare.Status)
	}
}

func TestHandle_SuggestionAndRecoverable(t *testing.T) {
	got := Handle(New(KindFileNotFound, "file gone"), "", "")
	if got.ErrorType != "file_not_found" {
		t.Fatalf("expected file_not_found; got %q", got.ErrorType)
	}
	if got.Recoverable {
		t.Fatal("expected recoverable=false")
	}
	if got.Suggestion == "" {
		t.Fatal("expected a suggestion for file_not_found")
	}
}

func TestWrap_NilCause(t *testing.T) {
	if err := Wrap(KindFileOperation, nil, "save"); err != nil {
		t.Fatalf("expected nil for nil cause; got %v", err)
	}
}
