package services

import (
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func validCreateRequest() *CreateReportRequest {
	return &CreateReportRequest{
		Title:   "Broken bench",
		Address: "Main St 5",
	}
}

func TestValidateReportInput(t *testing.T) {
	assert.NoError(t, validateReportInput(validCreateRequest()))

	req := validCreateRequest()
	req.Title = "   "
	assert.ErrorIs(t, validateReportInput(req), ErrTitleRequired)

	req = validCreateRequest()
	req.Title = strings.Repeat("x", 256)
	assert.ErrorIs(t, validateReportInput(req), ErrTitleTooLong)

	req = validCreateRequest()
	req.Address = ""
	assert.ErrorIs(t, validateReportInput(req), ErrAddressRequired)

	req = validCreateRequest()
	req.Address = strings.Repeat("x", 256)
	assert.ErrorIs(t, validateReportInput(req), ErrAddressTooLong)

	req = validCreateRequest()
	req.Description = strings.Repeat("x", 2001)
	assert.ErrorIs(t, validateReportInput(req), ErrDescriptionTooLong)

	req = validCreateRequest()
	req.ImageURLs = []string{"1", "2", "3", "4", "5", "6"}
	assert.ErrorIs(t, validateReportInput(req), ErrTooManyImages)

	req = validCreateRequest()
	req.ImageURLs = []string{"1", "2", "3", "4", "5"}
	assert.NoError(t, validateReportInput(req))
}

func TestGroupKeyParts(t *testing.T) {
	report := &models.IssueReport{Address: "  Main St 5 ", Category: "ROADS"}
	addr, cat := groupKeyParts(report)
	assert.Equal(t, "main st 5", addr)
	assert.Equal(t, "roads", cat)

	report = &models.IssueReport{Address: "Main St 5", Category: "  "}
	addr, cat = groupKeyParts(report)
	assert.Equal(t, "main st 5", addr)
	assert.Equal(t, "other", cat)
}
