package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/markscan/internal/config"
	"github.com/dgallion1/markscan/internal/pipeline"
	"github.com/dgallion1/markscan/internal/scheme"
	"github.com/dgallion1/markscan/internal/store"
)

const testKey = "test-key"

const testFeed = `<rss><channel><title>Feed</title>` +
	`<item id="1"><enclosure url="https://example.com/a.mp3" type="audio/mpeg"/><title>A</title></item>` +
	`<item id="2" hidden><title>B</title></item>` +
	`</channel></rss>`

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   8,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		DocumentTTL:    time.Hour,
		NameFilter:     config.FilterPaired,
	}
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, store.New(), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg), orch
}

func putDoc(orch *pipeline.Orchestrator, id, markup string) {
	s := scheme.New(markup)
	orch.Documents().Put(&store.Document{
		ID:        id,
		Filename:  id + ".xml",
		Title:     id,
		Elements:  s.Len(),
		CreatedAt: time.Now(),
		Scheme:    s,
	})
}

func do(t *testing.T, srv http.Handler, method, target string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func multipartBody(t *testing.T, field string, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth_NoAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "missing authorization")

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid api key")
}

func TestUpload_IndexesDocument(t *testing.T) {
	srv, orch := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"feed.rss": testFeed}, map[string]string{"title": "My feed"})
	rec, out := do(t, srv, http.MethodPost, "/api/documents", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	jobID := out["job_id"].(string)
	docID := out["doc_id"].(string)
	require.Equal(t, "/api/jobs/"+jobID+"/status", out["poll_url"])

	require.Eventually(t, func() bool {
		job := orch.GetJob(jobID)
		return job != nil && job.Snapshot().Status == pipeline.StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	rec, out = do(t, srv, http.MethodGet, "/api/jobs/"+jobID+"/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "completed", out["status"])
	require.Equal(t, docID, out["doc_id"])

	doc := orch.Documents().Get(docID)
	require.NotNil(t, doc)
	require.Equal(t, "My feed", doc.Title)

	// Same markup again is skipped.
	body, ct = multipartBody(t, "file", map[string]string{"copy.rss": testFeed}, nil)
	rec, out = do(t, srv, http.MethodPost, "/api/documents", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code)
	dupID := out["job_id"].(string)
	require.Eventually(t, func() bool {
		return orch.GetJob(dupID).Snapshot().Status == pipeline.StatusDupSkipped
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, docID, orch.GetJob(dupID).Snapshot().DocID)
}

func TestUpload_Rejects(t *testing.T) {
	srv, _ := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"image.png": "png"}, nil)
	rec, out := do(t, srv, http.MethodPost, "/api/documents", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "unsupported file type: .png", out["error"])

	body, ct = multipartBody(t, "other", map[string]string{"a.xml": "<a></a>"}, nil)
	rec, _ = do(t, srv, http.MethodPost, "/api/documents", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/jobs/nope/status", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	body, ct := multipartBody(t, "files", map[string]string{
		"a.xml":   "<a></a>",
		"b.html":  "<p>hi</p>",
		"bad.exe": "MZ",
	}, nil)
	rec, out := do(t, srv, http.MethodPost, "/api/documents/batch", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code)

	jobs := out["jobs"].([]any)
	require.Len(t, jobs, 3)
	var queued, failed int
	for _, j := range jobs {
		m := j.(map[string]any)
		if _, ok := m["error"]; ok {
			failed++
			require.Equal(t, "bad.exe", m["filename"])
		} else {
			queued++
		}
	}
	require.Equal(t, 2, queued)
	require.Equal(t, 1, failed)
}

func TestListAndDeleteDocuments(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "d1", "<a></a>")
	putDoc(orch, "d2", "<b></b>")

	rec, out := do(t, srv, http.MethodGet, "/api/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["documents"], 2)

	rec, out = do(t, srv, http.MethodDelete, "/api/documents/d1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["deleted"])
	require.Nil(t, orch.Documents().Get("d1"))

	rec, _ = do(t, srv, http.MethodDelete, "/api/documents/d1", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestElements_Paging(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "feed", testFeed)

	rec, out := do(t, srv, http.MethodGet, "/api/documents/feed/elements?offset=2&limit=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, orch.Documents().Get("feed").Elements, out["total"])

	page := out["elements"].([]any)
	require.Len(t, page, 3)
	first := page[0].(map[string]any)
	require.EqualValues(t, 2, first["index"])
	require.Equal(t, "title", first["name"])

	rec, _ = do(t, srv, http.MethodGet, "/api/documents/feed/elements?limit=0", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/documents/missing/elements", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestElement_Detail(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "feed", testFeed)
	s := orch.Documents().Get("feed").Scheme
	enc := s.FirstMatch(scheme.Enclosure, nil, 0, s.Len())
	item := s.FirstMatch("item", nil, 0, s.Len())

	rec, out := do(t, srv, http.MethodGet, "/api/documents/feed/elements/"+itoa(enc), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{
		map[string]any{"name": "url", "value": "https://example.com/a.mp3"},
		map[string]any{"name": "type", "value": "audio/mpeg"},
	}, out["attributes"])
	require.Equal(t, "", out["inner_text"])

	_, out = do(t, srv, http.MethodGet, "/api/documents/feed/elements/"+itoa(item), nil, "")
	require.Equal(t, "A", out["inner_only_text"])

	rec, _ = do(t, srv, http.MethodGet, "/api/documents/feed/elements/999", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, srv, http.MethodGet, "/api/documents/feed/elements/x", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestElement_Children(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "feed", testFeed)

	// rss(0) > channel(1) > title, item, item
	rec, out := do(t, srv, http.MethodGet, "/api/documents/feed/elements/1/children", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	for _, c := range out["children"].([]any) {
		names = append(names, c.(map[string]any)["name"].(string))
	}
	require.Equal(t, []string{"title", "item", "item"}, names)
}

func TestFind(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "feed", testFeed)
	s := orch.Documents().Get("feed").Scheme
	second := s.FirstMatch("item", []scheme.Attribute{{Name: "id", Value: scheme.Some("2")}}, 0, s.Len())
	require.GreaterOrEqual(t, second, 0)

	matchIndices := func(out map[string]any) []int {
		var idx []int
		for _, m := range out["matches"].([]any) {
			idx = append(idx, int(m.(map[string]any)["index"].(float64)))
		}
		return idx
	}

	_, out := do(t, srv, http.MethodGet, "/api/documents/feed/find?name=item&attr=id=2", nil, "")
	require.Equal(t, []int{second}, matchIndices(out))

	_, out = do(t, srv, http.MethodGet, "/api/documents/feed/find?attr=hidden", nil, "")
	require.Equal(t, []int{second}, matchIndices(out))

	_, out = do(t, srv, http.MethodGet, `/api/documents/feed/find?select=item%5B%40id%3D%222%22%5D`, nil, "")
	require.Equal(t, []int{second}, matchIndices(out))

	_, out = do(t, srv, http.MethodGet, "/api/documents/feed/find?name=item&all=true", nil, "")
	require.Equal(t, s.FindAll("item", nil, 0, s.Len()), matchIndices(out))
	require.Len(t, matchIndices(out), 2)

	_, out = do(t, srv, http.MethodGet, "/api/documents/feed/find?name=item&start="+itoa(second+1), nil, "")
	require.Empty(t, out["matches"])

	for _, bad := range []string{"", "?name=item&start=-1", "?select=item%5B", "?select=a&name=b", "?name=item&end=x"} {
		rec, _ := do(t, srv, http.MethodGet, "/api/documents/feed/find"+bad, nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestTree(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "feed", testFeed)

	rec, out := do(t, srv, http.MethodGet, "/api/documents/feed/tree", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "feed", out["title"])

	roots := out["children"].([]any)
	require.Len(t, roots, 1)
	require.Equal(t, "rss", roots[0].(map[string]any)["name"])
}

func TestIndexStats(t *testing.T) {
	srv, orch := newTestServer(t)
	putDoc(orch, "d1", "<a></a>")

	rec, out := do(t, srv, http.MethodGet, "/api/stats/index", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, out["documents"])
	require.Contains(t, out, "build")
	require.Contains(t, out, "queue_depth")
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.xml":           "report.xml",
		"../../etc/passwd.xml": "passwd.xml",
		`C:\Users\me\feed.rss`: "feed.rss",
		"":                     "unnamed",
		"a..b.xml":             "a_b.xml",
	}
	for in, want := range cases {
		require.Equal(t, want, sanitizeFilename(in), in)
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
