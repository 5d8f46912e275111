package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"custseg/form"
	"custseg/pipeline"
)

//go:embed assets
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

func staticFiles() http.Handler {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

const pageTitle = "Customer Cluster Predictor"

type fieldView struct {
	Key     string
	Label   string
	Kind    string
	Min     string
	Max     string
	Step    string
	Current string
	Options []string
}

type pageData struct {
	Title         string
	Columns       [][]fieldView
	Headline      string
	Probabilities string
	Submitted     string
	Error         string
}

func newPageData(c pipeline.Customer) *pageData {
	data := &pageData{Title: pageTitle, Columns: make([][]fieldView, 3)}
	for _, f := range form.Fields() {
		view := fieldView{
			Key:     f.Key,
			Label:   f.Label,
			Kind:    f.Kind,
			Current: f.Value(c),
			Options: f.Options,
		}
		if f.Kind == form.KindNumber {
			view.Min = strconv.Itoa(f.Min)
			view.Step = strconv.Itoa(f.Step)
			if f.Max != nil {
				view.Max = strconv.Itoa(*f.Max)
			}
		}
		col := f.Column - 1
		data.Columns[col] = append(data.Columns[col], view)
	}
	return data
}

func (h *Handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newPageData(form.Defaults()))
}

// handleSubmit 处理表单提交：校验、预测并重新渲染页面
func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := newPageData(form.Defaults())
		data.Error = "could not read the submitted form"
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	customer, err := form.Parse(r.PostForm)
	data := newPageData(customer)
	if err != nil {
		h.rejectInput(err)
	} else {
		var prediction *pipeline.Prediction
		prediction, err = h.predictor.Predict(customer)
		if err == nil {
			data.Headline = prediction.Headline()
			data.Probabilities = prediction.FormatProbabilities()
			data.Submitted = form.Summary(customer)
		}
	}

	status := http.StatusOK
	if err != nil {
		code, payload := describeError(err)
		data.Error = payload.Error
		if code == http.StatusInternalServerError {
			status = code
			h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		}
	}
	h.render(w, r, status, data)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, data *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	}
}
