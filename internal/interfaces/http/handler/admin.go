package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/infrastructure/artapi"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Multipart field names of the bulk upload form
const (
	ArtworksField = "artworks"
	ImagesField   = "images"
)

// AdminPage is the data behind the dashboard
type AdminPage struct {
	User       session.UserSession `json:"user"`
	Categories []string            `json:"categories"`
}

// AdminHandler serves the admin dashboard
type AdminHandler struct {
	BaseHandler
	admin *storefront.AdminService
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(admin *storefront.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Dashboard returns the signed-in admin and the selectable categories
func (h *AdminHandler) Dashboard(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	user, _ := p.Session.CurrentUser()
	h.Success(c, AdminPage{
		User:       user.Redacted(),
		Categories: append([]string(nil), catalog.KnownCategories...),
	})
}

// Publish accepts the bulk upload form: a JSON array of artworks in the
// "artworks" field and one file per artwork in "images", matched by position.
func (h *AdminHandler) Publish(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Upload too large")
			return
		}
		h.BadRequest(c, "Expected a multipart form")
		return
	}
	defer func() { _ = form.RemoveAll() }()

	in, files, err := readArtworks(form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer closeAll(c, files)

	res, err := h.admin.Publish(c.Request.Context(), p, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

func readArtworks(form *multipart.Form) (storefront.PublishInput, []multipart.File, error) {
	var in storefront.PublishInput

	values := form.Value[ArtworksField]
	if len(values) != 1 {
		return in, nil, fieldError(ArtworksField, "This field is required")
	}
	if err := json.Unmarshal([]byte(values[0]), &in.Artworks); err != nil {
		return in, nil, fieldError(ArtworksField, "Must be a JSON array of artworks")
	}

	headers := form.File[ImagesField]
	if len(headers) != len(in.Artworks) {
		return in, nil, fieldError(ImagesField, "One image is required per artwork")
	}

	files := make([]multipart.File, 0, len(headers))
	for i, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			for _, opened := range files {
				_ = opened.Close()
			}
			return in, nil, err
		}
		files = append(files, f)
		in.Artworks[i].Image = artapi.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		}
	}
	return in, files, nil
}

func fieldError(field, message string) error {
	return &storefront.ValidationError{Fields: []storefront.FieldError{{Field: field, Message: message}}}
}

func closeAll(c *gin.Context, files []multipart.File) {
	for _, f := range files {
		if err := f.Close(); err != nil {
			logger.GetGinLogger(c).Debug("Closing uploaded file failed", zap.Error(err))
		}
	}
}
