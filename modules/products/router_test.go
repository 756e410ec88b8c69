package products_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containercalc/containercalc/modules/products"
	"github.com/containercalc/containercalc/pkg/file"
)

// memRepo is an in-memory products.Repository.
type memRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]products.Product

	failList bool
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[uuid.UUID]products.Product)}
}

func (m *memRepo) Create(ctx context.Context, p *products.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.SKU == p.SKU {
			return products.ErrDuplicateSKU
		}
	}
	p.ID = uuid.New()
	m.items[p.ID] = *p
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.items[id]; ok {
		return &p, nil
	}
	return nil, products.ErrProductNotFound
}

func (m *memRepo) List(ctx context.Context) ([]products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, assert.AnError
	}
	out := make([]products.Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, p *products.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return products.ErrProductNotFound
	}
	for id, existing := range m.items {
		if id != p.ID && existing.SKU == p.SKU {
			return products.ErrDuplicateSKU
		}
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return products.ErrProductNotFound
	}
	delete(m.items, id)
	return nil
}

func newTestServer(t *testing.T, repo products.Repository, images file.Storage) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(products.Router(repo, images, nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

const validProduct = `{
	"name": "20ft Dry Container",
	"sku": "CC-20DV",
	"description": "Standard dry van",
	"price_cents": 250000,
	"currency": "USD",
	"width_mm": 2438,
	"height_mm": 2591,
	"depth_mm": 6058,
	"weight_g": 2300000
}`

func createProduct(t *testing.T, srv *httptest.Server, body string) products.Product {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+"/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Product products.Product `json:"product"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Product
}

func TestRouter_CRUD(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newMemRepo(), nil)
	client := srv.Client()

	created := createProduct(t, srv, validProduct)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "CC-20DV", created.SKU)

	t.Run("get", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/" + created.ID.String())
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Products []products.Product `json:"products"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Len(t, out.Products, 1)
	})

	t.Run("update", func(t *testing.T) {
		body := strings.Replace(validProduct, "20ft Dry Container", "40ft High Cube", 1)
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/"+created.ID.String(), strings.NewReader(body))
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Product products.Product `json:"product"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "40ft High Cube", out.Product.Name)
	})

	t.Run("delete then 404", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/"+created.ID.String(), nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		getResp, err := client.Get(srv.URL + "/" + created.ID.String())
		require.NoError(t, err)
		getResp.Body.Close()
		assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	})
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("validation failure lists fields", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMemRepo(), nil)
		resp, err := srv.Client().Post(srv.URL+"/", "application/json",
			strings.NewReader(`{"name":"","sku":"","currency":"USD"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "details")
	})

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMemRepo(), nil)
		createProduct(t, srv, validProduct)

		resp, err := srv.Client().Post(srv.URL+"/", "application/json", strings.NewReader(validProduct))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, newMemRepo(), nil)
		resp, err := srv.Client().Get(srv.URL + "/not-a-uuid")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list failure is a 500", func(t *testing.T) {
		t.Parallel()

		repo := newMemRepo()
		repo.failList = true
		srv := newTestServer(t, repo, nil)

		resp, err := srv.Client().Get(srv.URL + "/")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestRouter_ImageUpload(t *testing.T) {
	t.Parallel()

	newUploadRequest := func(t *testing.T, url, contentType string, payload []byte) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="image"; filename="photo.png"`}
		hdr["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, url, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	t.Run("stores image and records URL", func(t *testing.T) {
		t.Parallel()

		storage, err := file.NewLocalStorage(t.TempDir(), "http://cdn.example.com")
		require.NoError(t, err)

		repo := newMemRepo()
		srv := newTestServer(t, repo, storage)
		created := createProduct(t, srv, validProduct)

		req := newUploadRequest(t, srv.URL+"/"+created.ID.String()+"/image", "image/png", []byte("png-bytes"))
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Product products.Product `json:"product"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Contains(t, out.Product.ImageURL, "http://cdn.example.com")

		stored, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, out.Product.ImageURL, stored.ImageURL)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		t.Parallel()

		storage, err := file.NewLocalStorage(t.TempDir(), "http://cdn.example.com")
		require.NoError(t, err)

		srv := newTestServer(t, newMemRepo(), storage)
		created := createProduct(t, srv, validProduct)

		req := newUploadRequest(t, srv.URL+"/"+created.ID.String()+"/image", "application/pdf", []byte("%PDF"))
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("unknown product", func(t *testing.T) {
		t.Parallel()

		storage, err := file.NewLocalStorage(t.TempDir(), "http://cdn.example.com")
		require.NoError(t, err)

		srv := newTestServer(t, newMemRepo(), storage)
		req := newUploadRequest(t, srv.URL+"/"+uuid.NewString()+"/image", "image/png", []byte("png"))
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
