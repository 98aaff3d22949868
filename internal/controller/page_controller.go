package controller

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"
)

const sensorPage = "sensor.html"

// PageController renders the dashboard page.
type PageController struct {
	templates *template.Template
	logger    *logrus.Logger
}

// NewPageController creates a PageController rendering from templates.
func NewPageController(templates *template.Template, logger *logrus.Logger) *PageController {
	return &PageController{templates: templates, logger: logger}
}

// HandleSensorPage renders the dashboard. The page loads its data from the API.
func (c *PageController) HandleSensorPage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, sensorPage, nil); err != nil {
		c.logger.WithError(err).Error("failed to render sensor page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
