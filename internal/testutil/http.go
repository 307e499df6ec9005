package testutil

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// RenderedHTML 一次模板渲染调用
type RenderedHTML struct {
	Name string
	Data any
}

// HTMLRecorder 记录模板名与上下文的 gin HTMLRender，替换真实模板用于断言
type HTMLRecorder struct {
	mu    sync.Mutex
	calls []RenderedHTML
}

func (r *HTMLRecorder) Instance(name string, data any) render.Render {
	r.mu.Lock()
	r.calls = append(r.calls, RenderedHTML{Name: name, Data: data})
	r.mu.Unlock()
	return render.String{Format: "%s", Data: []any{name}}
}

// Last 最近一次渲染；没有渲染时 ok 为 false
func (r *HTMLRecorder) Last() (RenderedHTML, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return RenderedHTML{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Do 发送请求并返回响应
func Do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// MakeJSONRequest 发送 JSON 请求并解析 JSON 响应
func MakeJSONRequest(r http.Handler, method, endpoint string, body any, authToken string) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, endpoint, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	rec := Do(r, req)

	resp := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// MultipartRequest 构造带文件的 multipart 请求；fileName 为空时不附带文件
func MultipartRequest(method, endpoint string, fields gin.H, fileField, fileName string, content []byte, authToken string) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if s, ok := v.(string); ok {
			_ = w.WriteField(k, s)
		}
	}
	if fileName != "" {
		fw, _ := w.CreateFormFile(fileField, fileName)
		_, _ = fw.Write(content)
	}
	_ = w.Close()

	req := httptest.NewRequest(method, endpoint, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	return req
}
