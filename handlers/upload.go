package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"metawall/imagehost"
	"metawall/response"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// firstFile returns the "image" part when present, otherwise the first
// file part by field name.
func firstFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if files := form.File["image"]; len(files) > 0 {
		return files[0]
	}

	fields := make([]string, 0, len(form.File))
	for name := range form.File {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		if files := form.File[name]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

// UploadImage godoc
// @Summary   Upload a jpg or png of at most 2 MB
// @Tags      upload
// @Accept    multipart/form-data
// @Produce   json
// @Security  BearerAuth
// @Param     image formData file true "image file"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]string
// @Router    /upload [post]
func (h *Handler) UploadImage(c *gin.Context) {
	tooLarge := response.BadRequest("檔案過大，僅限 2mb 以下檔案")

	// Room for the multipart envelope on top of the file itself.
	const maxBody = imagehost.MaxImageSize + 1<<20
	if c.Request.ContentLength > maxBody {
		response.Error(c, tooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	form, err := c.MultipartForm()
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, tooLarge)
		return
	}

	file := firstFile(form)
	if file == nil {
		response.Error(c, response.BadRequest("尚未上傳檔案"))
		return
	}

	switch err := imagehost.Check(file.Filename, file.Size); {
	case errors.Is(err, imagehost.ErrUnsupportedType):
		response.Error(c, response.BadRequest("檔案格式錯誤，僅限上傳 jpg、jpeg 與 png 格式。"))
		return
	case errors.Is(err, imagehost.ErrTooLarge):
		response.Error(c, tooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, errors.Wrap(err, "open upload"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imagehost.MaxImageSize+1))
	if err != nil {
		response.Error(c, errors.Wrap(err, "read upload"))
		return
	}

	link, err := h.Images.Upload(c.Request.Context(), file.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "圖片上傳成功", link)
}
