package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"car_market/internal/models"
	"car_market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Multipart field names, matching the public API contract.
const (
	formTitle       = "title"
	formDescription = "description"
	formTagCarType  = "tags[car_type]"
	formTagCompany  = "tags[company]"
	formTagDealer   = "tags[dealer]"
	formImages      = "images"
)

type removeImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// @Summary      List my cars
// @Tags         cars
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "results, cars"
// @Failure      401  {object}  map[string]string
// @Router       /api/cars [get]
// @Security     BearerAuth
func (h *Handler) listCars(c *gin.Context) {
	user, _ := currentUser(c)
	cars, err := h.services.Cars.List(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err, "cars_list_failed", "owner", user.ID)
		return
	}
	respondListing(c, http.StatusOK, len(cars), gin.H{"cars": cars})
}

// @Summary      Search my cars
// @Description  Case-insensitive literal substring match over title, description and tags. Empty q returns everything.
// @Tags         cars
// @Produce      json
// @Param        q  query  string  false  "Search query"
// @Success      200  {object}  map[string]interface{}  "results, cars"
// @Failure      401  {object}  map[string]string
// @Router       /api/cars/search [get]
// @Security     BearerAuth
func (h *Handler) searchCars(c *gin.Context) {
	user, _ := currentUser(c)
	cars, err := h.services.Cars.Search(c.Request.Context(), user.ID, c.Query("q"))
	if err != nil {
		h.respondError(c, err, "cars_search_failed", "owner", user.ID)
		return
	}
	respondListing(c, http.StatusOK, len(cars), gin.H{"cars": cars})
}

// @Summary      Get one car
// @Tags         cars
// @Produce      json
// @Param        id  path  string  true  "Car ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/cars/{id} [get]
// @Security     BearerAuth
func (h *Handler) getCar(c *gin.Context) {
	user, _ := currentUser(c)
	car, err := h.services.Cars.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "car_get_failed", "owner", user.ID, "id", c.Param("id"))
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"car": car})
}

// @Summary      Create car
// @Description  Multipart form: title, description, tags[car_type], tags[company], tags[dealer] and 1-10 image files under "images".
// @Tags         cars
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/cars [post]
// @Security     BearerAuth
func (h *Handler) createCar(c *gin.Context) {
	user, _ := currentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "invalid multipart form"})
		return
	}

	staged, err := h.stageUploads(c, form.File[formImages])
	if err != nil {
		h.respondError(c, err, "car_stage_uploads_failed", "owner", user.ID)
		return
	}
	defer removeFiles(staged)

	in := service.CreateCarInput{
		Title:       c.PostForm(formTitle),
		Description: c.PostForm(formDescription),
		Tags:        tagsFromForm(c),
		ImagePaths:  staged,
	}
	car, err := h.services.Cars.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		h.respondError(c, err, "car_create_failed", "owner", user.ID)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"car": car})
}

// @Summary      Update car
// @Description  Multipart form, all fields optional. Omitted scalars keep prior values; tags merge per key; new image files replace the whole sequence.
// @Tags         cars
// @Accept       multipart/form-data
// @Produce      json
// @Param        id  path  string  true  "Car ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/cars/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateCar(c *gin.Context) {
	user, _ := currentUser(c)

	// multipart is optional on update; a plain form body carries no files
	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File[formImages]
	}

	staged, err := h.stageUploads(c, files)
	if err != nil {
		h.respondError(c, err, "car_stage_uploads_failed", "owner", user.ID)
		return
	}
	defer removeFiles(staged)

	in := service.UpdateCarInput{
		Title:       c.PostForm(formTitle),
		Description: c.PostForm(formDescription),
		Tags:        tagsFromForm(c),
		ImagePaths:  staged,
	}
	car, err := h.services.Cars.Update(c.Request.Context(), user.ID, c.Param("id"), in)
	if err != nil {
		h.respondError(c, err, "car_update_failed", "owner", user.ID, "id", c.Param("id"))
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"car": car})
}

// @Summary      Delete car
// @Description  Removes the listing; referenced images are cleaned up from the media host in the background.
// @Tags         cars
// @Produce      json
// @Param        id  path  string  true  "Car ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/cars/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteCar(c *gin.Context) {
	user, _ := currentUser(c)
	if err := h.services.Cars.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.respondError(c, err, "car_delete_failed", "owner", user.ID, "id", c.Param("id"))
		return
	}
	respondSuccess(c, http.StatusOK, nil)
}

// @Summary      Remove one image
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Car ID"
// @Param        body  body  removeImageRequest  true  "Image URL to remove"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/cars/{id}/images [delete]
// @Security     BearerAuth
func (h *Handler) removeImage(c *gin.Context) {
	user, _ := currentUser(c)

	var input removeImageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": "image URL is required"})
		return
	}

	car, err := h.services.Cars.RemoveImage(c.Request.Context(), user.ID, c.Param("id"), input.ImageURL)
	if err != nil {
		h.respondError(c, err, "car_remove_image_failed", "owner", user.ID, "id", c.Param("id"))
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"car": car})
}

func tagsFromForm(c *gin.Context) models.CarTags {
	return models.CarTags{
		CarType: c.PostForm(formTagCarType),
		Company: c.PostForm(formTagCompany),
		Dealer:  c.PostForm(formTagDealer),
	}
}

// stageUploads saves incoming files into the staging directory under random
// names. On any failure the already-staged files are removed.
func (h *Handler) stageUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	staged := make([]string, 0, len(files))
	for _, fh := range files {
		dst := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(fh.Filename))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			removeFiles(staged)
			return nil, fmt.Errorf("stage upload %q: %w", fh.Filename, err)
		}
		staged = append(staged, dst)
	}
	return staged, nil
}

// removeFiles best-effort deletes staged files once the request is done.
func removeFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
