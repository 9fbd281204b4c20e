package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"car_market/internal/apperr"
	"car_market/internal/models"
	"car_market/internal/service"

	"github.com/gin-gonic/gin"
)

func newCarsRouter(auth *mockAuth, cars *mockCars, uploadDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &service.Service{Authorization: auth, Cars: cars}
	h := NewHandler(s, nil, uploadDir)
	return h.InitRoutes()
}

func caller(id int) *mockAuth {
	return &mockAuth{user: models.User{ID: id, Email: "owner@example.com"}}
}

// buildCarForm writes a multipart body with the given scalar fields and
// n fake image files.
func buildCarForm(t *testing.T, fields map[string]string, nImages int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	for i := 0; i < nImages; i++ {
		fw, err := mw.CreateFormFile(formImages, "photo.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(fw, "jpegbytes"); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestListCars_ScopedToCaller(t *testing.T) {
	cars := &mockCars{cars: []models.Car{{ID: "c1"}, {ID: "c2"}}}
	r := newCarsRouter(caller(7), cars, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if cars.lastOwner != 7 {
		t.Fatalf("expected owner 7, got %d", cars.lastOwner)
	}
	var resp struct {
		Results int `json:"results"`
		Data    struct {
			Cars []models.Car `json:"cars"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Results != 2 || len(resp.Data.Cars) != 2 {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
}

func TestSearchCars_PassesQuery(t *testing.T) {
	cars := &mockCars{cars: []models.Car{}}
	r := newCarsRouter(caller(7), cars, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cars/search?q=tesla%25", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if cars.lastQuery != "tesla%" {
		t.Fatalf("query: got %q, want %q", cars.lastQuery, "tesla%")
	}
}

func TestGetCar_OwnershipMismatchIs404(t *testing.T) {
	cars := &mockCars{err: apperr.NotFound("no car found with that ID")}
	r := newCarsRouter(caller(7), cars, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cars/other-users-car", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (body=%s)", w.Code, w.Body.String())
	}
	if cars.lastID != "other-users-car" {
		t.Fatalf("id: got %q", cars.lastID)
	}
}

func TestCreateCar_StagesFilesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	cars := &mockCars{car: models.Car{ID: "new-id", Images: []string{"u1", "u2", "u3"}}}
	r := newCarsRouter(caller(7), cars, dir)

	body, contentType := buildCarForm(t, map[string]string{
		formTitle:       "Model X",
		formDescription: "A car",
		formTagCarType:  "SUV",
		formTagCompany:  "Tesla",
		formTagDealer:   "AutoMax",
	}, 3)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cars", body)
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if got := cars.lastCreate; got.Title != "Model X" ||
		got.Tags.CarType != "SUV" || got.Tags.Company != "Tesla" || got.Tags.Dealer != "AutoMax" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if len(cars.lastCreate.ImagePaths) != 3 {
		t.Fatalf("expected 3 staged paths, got %d", len(cars.lastCreate.ImagePaths))
	}

	// staged files are removed once the request completes
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty staging dir, found %d entries", len(entries))
	}
}

func TestCreateCar_NonMultipartBodyIs400(t *testing.T) {
	cars := &mockCars{}
	r := newCarsRouter(caller(7), cars, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cars", bytes.NewBufferString(`{"title":"x"}`))
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body=%s)", w.Code, w.Body.String())
	}
}

func TestUpdateCar_MultipartOptional(t *testing.T) {
	cars := &mockCars{car: models.Car{ID: "c1", Title: "New title"}}
	r := newCarsRouter(caller(7), cars, t.TempDir())

	body, contentType := buildCarForm(t, map[string]string{
		formTitle:      "New title",
		formTagCompany: "Tesla",
	}, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/cars/c1", body)
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if cars.lastID != "c1" {
		t.Fatalf("id: got %q", cars.lastID)
	}
	if got := cars.lastUpdate; got.Title != "New title" || got.Tags.Company != "Tesla" ||
		got.Description != "" || got.Tags.Dealer != "" || len(got.ImagePaths) != 0 {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestDeleteCar_Success(t *testing.T) {
	cars := &mockCars{}
	r := newCarsRouter(caller(7), cars, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/cars/c1", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if cars.deleteCalls != 1 || cars.lastID != "c1" {
		t.Fatalf("expected one Delete(c1), got calls=%d id=%q", cars.deleteCalls, cars.lastID)
	}
}

func TestRemoveImage(t *testing.T) {
	t.Run("missing imageUrl is 400", func(t *testing.T) {
		cars := &mockCars{}
		r := newCarsRouter(caller(7), cars, t.TempDir())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/cars/c1/images", bytes.NewBufferString(`{}`))
		req.Header = authHeader("tok")
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want 400 (body=%s)", w.Code, w.Body.String())
		}
	})

	t.Run("unknown reference is 404", func(t *testing.T) {
		cars := &mockCars{err: apperr.NotFound("car or image not found")}
		r := newCarsRouter(caller(7), cars, t.TempDir())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/cars/c1/images",
			bytes.NewBufferString(`{"imageUrl":"https://media/unknown.jpg"}`))
		req.Header = authHeader("tok")
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status: got %d, want 404 (body=%s)", w.Code, w.Body.String())
		}
	})

	t.Run("valid reference returns updated car", func(t *testing.T) {
		cars := &mockCars{car: models.Car{ID: "c1", Images: []string{"a.jpg", "c.jpg"}}}
		r := newCarsRouter(caller(7), cars, t.TempDir())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/cars/c1/images",
			bytes.NewBufferString(`{"imageUrl":"b.jpg"}`))
		req.Header = authHeader("tok")
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		if cars.lastImageURL != "b.jpg" {
			t.Fatalf("imageUrl: got %q", cars.lastImageURL)
		}
		var resp struct {
			Data struct {
				Car models.Car `json:"car"`
			} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(resp.Data.Car.Images) != 2 {
			t.Fatalf("expected 2 images left, got %v", resp.Data.Car.Images)
		}
	})
}
