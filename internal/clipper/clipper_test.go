package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"school-meal-planner/internal/llm"
)

// --- Mocks ---
type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompt = prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response}, nil
}

const menuPage = `
<html>
	<head><script>alert('bad');</script></head>
	<body>
		<nav>홈 | 공지사항</nav>
		<h1>3월 급식 식단표</h1>
		<div class="ads">광고 배너</div>
		<table>
			<tr><td>잡곡밥</td><td>된장찌개</td></tr>
			<tr><td>배추김치</td><td>   </td></tr>
		</table>
		<script>more_bad_stuff()</script>
		<footer>Copyright 2024</footer>
	</body>
</html>`

func newMenuServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(menuPage))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// --- Tests ---

func TestFetchMenuText(t *testing.T) {
	ts := newMenuServer(t)
	c := newTestClipper(nil)

	cleanText, err := c.FetchMenuText(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, unwanted := range []string{"alert('bad')", "광고 배너", "Copyright 2024", "공지사항"} {
		if strings.Contains(cleanText, unwanted) {
			t.Errorf("Expected %q to be removed", unwanted)
		}
	}
	want := "3월 급식 식단표\n잡곡밥\n된장찌개\n배추김치"
	if cleanText != want {
		t.Errorf("Expected collapsed text\n%q\ngot\n%q", want, cleanText)
	}
}

func TestFetchMenuText_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := newTestClipper(nil).FetchMenuText(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected an error for a 404 response")
	}
}

func TestCollapseLines(t *testing.T) {
	got := collapseLines("  a  \n\n\n b   c \n\t\n")
	if got != "a\nb c" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestImport(t *testing.T) {
	ts := newMenuServer(t)

	t.Run("WithoutModel", func(t *testing.T) {
		text, err := newTestClipper(nil).Import(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if !strings.Contains(text, "된장찌개") {
			t.Errorf("Expected page text, got %q", text)
		}
	})

	t.Run("WithModel", func(t *testing.T) {
		mockAI := &MockTextGenerator{Response: `{"menus": ["잡곡밥", " 된장찌개 ", "", "배추김치"]}`}
		text, err := newTestClipper(mockAI).Import(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if text != "잡곡밥\n된장찌개\n배추김치" {
			t.Errorf("Unexpected menus %q", text)
		}
		if !strings.Contains(mockAI.Prompt, "배추김치") {
			t.Error("Expected page text in the prompt")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		c := newTestClipper(&MockTextGenerator{Response: "not json"})
		if _, err := c.Import(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected an error for invalid JSON")
		}
	})

	t.Run("ModelError", func(t *testing.T) {
		c := newTestClipper(&MockTextGenerator{ShouldError: true})
		if _, err := c.Import(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected an error from the model")
		}
	})
}

// newTestClipper talks to httptest servers on loopback.
func newTestClipper(textGen llm.TextGenerator) *Clipper {
	c := NewClipper(textGen)
	c.httpClient = &http.Client{Timeout: 5 * time.Second}
	return c
}

func TestFetchMenuText_RefusesInternalDestinations(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, menuPage)
	}))
	defer ts.Close()

	t.Run("Loopback", func(t *testing.T) {
		_, err := NewClipper(nil).FetchMenuText(context.Background(), ts.URL)
		if !errors.Is(err, ErrForbiddenDestination) {
			t.Fatalf("Expected ErrForbiddenDestination, got %v", err)
		}
		if hits != 0 {
			t.Errorf("Expected no request to reach the server, got %d", hits)
		}
	})

	t.Run("ImportWrapsRefusal", func(t *testing.T) {
		_, err := NewClipper(&MockTextGenerator{Response: `{"menus":[]}`}).Import(context.Background(), ts.URL)
		if !errors.Is(err, ErrForbiddenDestination) {
			t.Fatalf("Expected ErrForbiddenDestination, got %v", err)
		}
	})

	t.Run("UnsupportedScheme", func(t *testing.T) {
		for _, raw := range []string{"file:///etc/passwd", "gopher://example.com/", "ftp://example.com/menu"} {
			if _, err := NewClipper(nil).FetchMenuText(context.Background(), raw); !errors.Is(err, ErrUnsupportedScheme) {
				t.Errorf("%s: expected ErrUnsupportedScheme, got %v", raw, err)
			}
		}
	})
}

func TestPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.10", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		if got := publicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("publicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestRefuseInternal(t *testing.T) {
	if err := refuseInternal("tcp", "169.254.169.254:80", nil); !errors.Is(err, ErrForbiddenDestination) {
		t.Errorf("Expected metadata address to be refused, got %v", err)
	}
	if err := refuseInternal("tcp", "[2606:2800:220:1:248:1893:25c8:1946]:443", nil); err != nil {
		t.Errorf("Expected public address to pass, got %v", err)
	}
}
