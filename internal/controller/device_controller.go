package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"SmartTent.api/internal/models"
	"SmartTent.api/internal/service"
	"SmartTent.api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// DataController handles HTTP requests for device telemetry.
type DataController struct {
	service *service.DataService
	logger  *logrus.Logger
}

// NewDataController creates a new DataController.
func NewDataController(service *service.DataService, logger *logrus.Logger) *DataController {
	return &DataController{
		service: service,
		logger:  logger,
	}
}

// HandleData dispatches /api/data by method.
func (c *DataController) HandleData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.HandleSubmit(w, r)
	case http.MethodGet:
		c.HandleList(w, r)
	default:
		c.fail(w, r, models.NewAPIError(models.ErrorCodeBadRequest, "Method not allowed", http.StatusMethodNotAllowed))
	}
}

// HandleSubmit stores the posted JSON body as the latest reading of its device.
func (c *DataController) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("error reading request body: %v", err), http.StatusInternalServerError)
		c.fail(w, r, apiErr)
		return
	}
	defer r.Body.Close()

	if _, err := c.service.Submit(r.Context(), body); err != nil {
		var apiErr models.APIError
		if !errors.As(err, &apiErr) {
			apiErr = models.NewAPIError(models.ErrorCodeInternalServerError, err.Error(), http.StatusInternalServerError)
		}
		c.fail(w, r, apiErr)
		return
	}

	c.respond(w, r, models.SubmitResponse{Success: true})
}

// HandleList returns every device with its latest reading.
func (c *DataController) HandleList(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, c.service.List())
}

// HandleGet returns the latest reading of the device named in the path.
func (c *DataController) HandleGet(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["device_id"]

	reading, err := c.service.Get(deviceID)
	if err != nil {
		c.fail(w, r, models.ErrDeviceNotFound)
		return
	}
	c.respond(w, r, reading)
}

// HandleStatus reports that the service is online and how many devices it holds.
func (c *DataController) HandleStatus(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, c.service.Status())
}

func (c *DataController) respond(w http.ResponseWriter, r *http.Request, payload interface{}) {
	if err := utils.RespondWithJSON(w, http.StatusOK, payload); err != nil {
		c.logger.WithError(err).WithField("path", r.URL.Path).Error("writing response")
	}
}

func (c *DataController) fail(w http.ResponseWriter, r *http.Request, apiErr models.APIError) {
	if err := utils.RespondWithError(w, apiErr); err != nil {
		c.logger.WithError(err).WithField("path", r.URL.Path).Error("writing error response")
	}
}
