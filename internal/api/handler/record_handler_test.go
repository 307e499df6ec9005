package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/ceb/internal/testutil"
)

func TestTable1AdminHandlers(t *testing.T) {
	f := newFixture(t)
	h := f.handler
	r := gin.New()
	r.POST("/t1", h.CreateTable1)
	r.GET("/t1/:id", h.GetTable1)
	r.PUT("/t1/:id", h.UpdateTable1)
	r.DELETE("/t1/:id", h.DeleteTable1)

	rec, resp := testutil.MakeJSONRequest(r, http.MethodPost, "/t1", gin.H{"title": "A", "body": "x"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int(resp["data"].(map[string]any)["id"].(float64))
	path := "/t1/" + strconv.Itoa(id)

	rec, _ = testutil.MakeJSONRequest(r, http.MethodPost, "/t1", gin.H{"title": "A"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = testutil.MakeJSONRequest(r, http.MethodPut, path, gin.H{"title": "A2", "body": "x2"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A2", resp["data"].(map[string]any)["title"])

	rec, resp = testutil.MakeJSONRequest(r, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x2", resp["data"].(map[string]any)["body"])

	rec, _ = testutil.MakeJSONRequest(r, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = testutil.MakeJSONRequest(r, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = testutil.MakeJSONRequest(r, http.MethodGet, "/t1/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTable2AdminHandlers(t *testing.T) {
	f := newFixture(t)
	h := f.handler
	r := gin.New()
	r.POST("/t2", h.CreateTable2)
	r.GET("/t2/:id", h.GetTable2)
	r.PUT("/t2/:id", h.UpdateTable2)
	r.DELETE("/t2/:id", h.DeleteTable2)

	req := testutil.MultipartRequest(http.MethodPost, "/t2", gin.H{"title": "B", "body": "y"}, "image", "", nil, "")
	rec := testutil.Do(r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "image is required on create")

	req = testutil.MultipartRequest(http.MethodPost, "/t2", gin.H{"title": "B", "body": "y"}, "image", "img.exe", []byte("x"), "")
	assert.Equal(t, http.StatusBadRequest, testutil.Do(r, req).Code)

	req = testutil.MultipartRequest(http.MethodPost, "/t2", gin.H{"title": "B", "body": "y"}, "image", "img.png", []byte("png"), "")
	rec = testutil.Do(r, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp := testutil.MakeJSONRequest(r, http.MethodGet, "/t2/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "B", data["title"])
	image := data["image"].(string)
	assert.Contains(t, image, "reg/image/")

	req = testutil.MultipartRequest(http.MethodPut, "/t2/1", gin.H{"title": "B2", "body": "y"}, "image", "", nil, "")
	rec = testutil.Do(r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, resp = testutil.MakeJSONRequest(r, http.MethodGet, "/t2/1", nil, "")
	assert.Equal(t, image, resp["data"].(map[string]any)["image"], "image kept when not re-uploaded")

	req = testutil.MultipartRequest(http.MethodPut, "/t2/9", gin.H{"title": "B2", "body": "y"}, "image", "", nil, "")
	assert.Equal(t, http.StatusNotFound, testutil.Do(r, req).Code)

	rec, _ = testutil.MakeJSONRequest(r, http.MethodDelete, "/t2/1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
