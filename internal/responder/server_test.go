package responder

import (
	"errors"
	"strconv"
	"testing"

	"github.com/danmuck/mctp/internal/protocol"
	"github.com/danmuck/mctp/internal/testutil/testlog"
)

func TestServerRespondRoutedDocument(t *testing.T) {
	testlog.Start(t)

	root := t.TempDir()
	writeDoc(t, root, "hello.md", "Hi")
	srv := NewServer(RouteTable{"/": "index.md", "/hello": "hello.md"}, NewDirStore(root))

	ex := srv.Respond("/hello")
	if ex.LookupErr != nil {
		t.Fatalf("unexpected lookup error: %v", ex.LookupErr)
	}
	if ex.DocumentID != "hello.md" {
		t.Fatalf("unexpected document id: %q", ex.DocumentID)
	}
	if ex.Response.Status != protocol.StatusOK {
		t.Fatalf("unexpected status: %q", ex.Response.Status)
	}
	if ex.Response.ContentType() != protocol.ContentTypeMarkdown {
		t.Fatalf("unexpected content type: %q", ex.Response.ContentType())
	}
	if string(ex.Response.Body) != "Hi" {
		t.Fatalf("unexpected body: %q", ex.Response.Body)
	}
}

func TestServerRespondDirectFallback(t *testing.T) {
	testlog.Start(t)

	root := t.TempDir()
	writeDoc(t, root, "notes/today.md", "today")
	srv := NewServer(nil, NewDirStore(root))

	ex := srv.Respond("/notes/today")
	if ex.Response.Status != protocol.StatusOK || string(ex.Response.Body) != "today" {
		t.Fatalf("unexpected fallback response: %+v", ex.Response)
	}
}

func TestServerRespondMissingIsFixedNotFound(t *testing.T) {
	testlog.Start(t)

	srv := NewServer(RouteTable{"/": "index.md"}, NewDirStore(t.TempDir()))
	ex := srv.Respond("/missing")
	if !errors.Is(ex.LookupErr, ErrNotFound) {
		t.Fatalf("expected ErrNotFound lookup error, got %v", ex.LookupErr)
	}
	want := protocol.NotFound()
	if ex.Response.Status != want.Status || string(ex.Response.Body) != protocol.NotFoundBody {
		t.Fatalf("unexpected response: %+v", ex.Response)
	}
	if ex.Response.ContentType() != protocol.ContentTypePlain {
		t.Fatalf("unexpected content type: %q", ex.Response.ContentType())
	}
}

func TestServerRespondMultiByteContentLength(t *testing.T) {
	testlog.Start(t)

	root := t.TempDir()
	content := "Grüße, 世界 🌍"
	writeDoc(t, root, "intl.md", content)
	srv := NewServer(nil, NewDirStore(root))

	ex := srv.Respond("/intl")
	decoded, err := protocol.DecodeResponse(protocol.EncodeResponse(ex.Response.Status, ex.Response.Headers, ex.Response.Body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw, _ := decoded.Headers.Get(protocol.HeaderContentLength)
	if raw != strconv.Itoa(len(content)) {
		t.Fatalf("content-length=%s want %d bytes", raw, len(content))
	}
	if raw == strconv.Itoa(len([]rune(content))) {
		t.Fatalf("content-length counted characters")
	}
}
