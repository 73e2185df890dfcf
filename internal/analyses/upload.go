package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"errorlens-backend/internal/shared/util"
)

// MaxUploadBytes is the largest accepted screenshot.
const MaxUploadBytes = 15 << 20

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

const uploadField = "file"

var allowedMediaTypes = []string{"image/png", "image/jpeg"}

// uploadError is a rejected upload: the status and failed body to return.
type uploadError struct {
	status int
	label  string
	body   AnalysisResponse
}

func rejectUpload(label, reason string) *uploadError {
	return &uploadError{status: http.StatusBadRequest, label: label, body: RejectedUploadResponse(reason)}
}

// readUpload extracts and checks the screenshot from a multipart request.
func readUpload(c *gin.Context) (Screenshot, *uploadError) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		switch {
		case isBodyTooLarge(err):
			return Screenshot{}, rejectUpload("too_large", ReasonFileTooLarge)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return Screenshot{}, rejectUpload("missing_file", ReasonNoFile)
		default:
			return Screenshot{}, rejectUpload("malformed", "Upload error: "+err.Error())
		}
	}
	if fileHeader.Size > MaxUploadBytes {
		return Screenshot{}, rejectUpload("too_large", ReasonFileTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Screenshot{}, &uploadError{status: http.StatusInternalServerError, label: "unreadable", body: ServerErrorResponse(err.Error())}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return Screenshot{}, &uploadError{status: http.StatusInternalServerError, label: "unreadable", body: ServerErrorResponse(fmt.Sprintf("read upload: %v", err))}
	}
	if len(data) > MaxUploadBytes {
		return Screenshot{}, rejectUpload("too_large", ReasonFileTooLarge)
	}

	mediaType, ok := detectImageType(data)
	if !ok {
		return Screenshot{}, rejectUpload("unsupported_type", ReasonUnsupported)
	}
	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		fileName = ""
	}
	return Screenshot{Data: data, MediaType: mediaType, FileName: fileName}, nil
}

func detectImageType(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	mt := mimetype.Detect(data)
	for _, allowed := range allowedMediaTypes {
		if mt.Is(allowed) {
			return allowed, true
		}
	}
	return "", false
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
