package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/child-growth-server/internal/domain"
)

// growthRequest is the JSON body shared by the four assessment endpoints.
// Which measurements are required depends on the endpoint.
type growthRequest struct {
	DOB    string   `json:"dob" binding:"required"`
	Gender string   `json:"gender" binding:"required"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
}

// dobLayouts are the accepted date-of-birth formats.
var dobLayouts = []string{"2006-01-02", time.RFC3339}

// bindRequest parses and validates the common request fields. A nil return
// means the response has already been written.
func (s *Server) bindRequest(c *gin.Context, needWeight, needHeight bool) *domain.AssessmentRequest {
	var body growthRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required parameters. Please provide dob, gender, and the required measurements.",
		})
		return nil
	}

	sex, err := domain.ParseSex(body.Gender)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil
	}

	dob, err := parseDOB(body.DOB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dob. Use YYYY-MM-DD or RFC 3339 format."})
		return nil
	}

	if needWeight && body.Weight == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Weight must be a positive number."})
		return nil
	}
	if needHeight && body.Height == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Height must be a positive number."})
		return nil
	}

	req := &domain.AssessmentRequest{DateOfBirth: dob, Sex: sex}
	if body.Weight != nil {
		req.WeightKg = *body.Weight
	}
	if body.Height != nil {
		req.HeightCm = *body.Height
	}
	return req
}

func parseDOB(value string) (time.Time, error) {
	var err error
	for _, layout := range dobLayouts {
		var dob time.Time
		if dob, err = time.Parse(layout, value); err == nil {
			return dob, nil
		}
	}
	return time.Time{}, err
}

// handleWeightForAge handles weight-for-age assessment requests
func (s *Server) handleWeightForAge(c *gin.Context) {
	req := s.bindRequest(c, true, false)
	if req == nil {
		return
	}
	result, err := s.assessor.WeightForAge(req)
	s.respond(c, result, err)
}

// handleWeightForHeight handles weight-for-height/length assessment requests
func (s *Server) handleWeightForHeight(c *gin.Context) {
	req := s.bindRequest(c, true, true)
	if req == nil {
		return
	}
	result, err := s.assessor.WeightForHeight(req)
	s.respond(c, result, err)
}

// handleLengthHeightForAge handles length/height-for-age assessment requests
func (s *Server) handleLengthHeightForAge(c *gin.Context) {
	req := s.bindRequest(c, false, true)
	if req == nil {
		return
	}
	result, err := s.assessor.LengthHeightForAge(req)
	s.respond(c, result, err)
}

// handleBMIForAge handles BMI-for-age assessment requests
func (s *Server) handleBMIForAge(c *gin.Context) {
	req := s.bindRequest(c, true, true)
	if req == nil {
		return
	}
	result, err := s.assessor.BMIForAge(req)
	s.respond(c, result, err)
}

// respond maps engine errors onto the HTTP error contract: validation and
// reference-data misses are client errors, anything else is a server fault.
func (s *Server) respond(c *gin.Context, result *domain.AssessmentResult, err error) {
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	var noDataErr *domain.NoReferenceDataError
	if errors.As(err, &noDataErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": noDataErr.Error()})
		return
	}

	s.logger.WithError(err).WithField("correlation_id", c.GetString("correlation_id")).
		Error("Assessment failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to process query",
		"details": err.Error(),
	})
}
