package tui

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// uploadPhase tracks the uploader state machine.
type uploadPhase string

const (
	uploadIdle      uploadPhase = "idle"
	uploadUploading uploadPhase = "uploading"
	uploadSuccess   uploadPhase = "success"
	uploadError     uploadPhase = "error"
)

var docTypes = []string{"receipt", "invoice", "other"}

type uploadState struct {
	phase      uploadPhase
	filePath   string
	typeIndex  int
	customType string
	result     *uploadResult
	errText    string
}

// uploadResult keeps the rendered extraction after a successful upload.
type uploadResult struct {
	merchant  string
	date      string
	timeOfDay string
	lines     []uploadLine
	total     string
}

type uploadLine struct {
	name string
	cost string
}

func newUploadState() uploadState {
	return uploadState{phase: uploadIdle}
}

func (a *App) handleUploadKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.upload.phase == uploadUploading {
		return a.handleGlobalKey(m)
	}
	switch m.String() {
	case "f":
		a.openModal(modalFilePath, a.upload.filePath)
		return a, nil
	case "t":
		a.upload.typeIndex = (a.upload.typeIndex + 1) % len(docTypes)
		if docTypes[a.upload.typeIndex] == "other" {
			a.openModal(modalCustomType, a.upload.customType)
		}
		a.resetUploadResult()
		return a, nil
	case "enter":
		return a, a.startUpload()
	}
	return a.handleGlobalKey(m)
}

// setUploadFile records a new file choice, dropping any previous result.
func (a *App) setUploadFile(path string) {
	a.upload.filePath = path
	a.resetUploadResult()
}

func (a *App) resetUploadResult() {
	if a.upload.phase == uploadSuccess || a.upload.phase == uploadError {
		a.upload.phase = uploadIdle
		a.upload.result = nil
		a.upload.errText = ""
	}
}

func (a *App) uploadDocType() string {
	docType := docTypes[a.upload.typeIndex]
	if docType == "other" {
		return a.upload.customType
	}
	return docType
}

// startUpload validates locally and transitions to uploading. Validation
// failures never reach the transport.
func (a *App) startUpload() tea.Cmd {
	path := a.upload.filePath
	if path == "" {
		a.upload.phase = uploadError
		a.upload.errText = "choose a file first"
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		a.upload.phase = uploadError
		a.upload.errText = "file not found: " + path
		return nil
	}
	docType := a.uploadDocType()
	if docType == "" {
		a.upload.phase = uploadError
		a.upload.errText = "document type is required"
		return nil
	}

	a.upload.phase = uploadUploading
	a.upload.errText = ""
	a.upload.result = nil
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{err: err}
		}
		defer file.Close()
		result, err := a.client.UploadDocument(a.ctx, filepath.Base(path), file, docType)
		return uploadDoneMsg{result: result, err: err}
	}
}

func (a *App) applyUploadDone(m uploadDoneMsg) {
	if m.err != nil {
		a.upload.phase = uploadError
		a.upload.errText = m.err.Error()
		return
	}
	a.upload.phase = uploadSuccess
	result := &uploadResult{
		merchant:  m.result.Merchant,
		date:      m.result.PurchaseDate,
		timeOfDay: m.result.PurchaseTime,
		total:     a.money(m.result.TotalCost),
	}
	for _, item := range m.result.Items {
		result.lines = append(result.lines, uploadLine{name: item.ItemName, cost: a.money(item.ItemCost)})
	}
	a.upload.result = result
}

func (a *App) renderUpload() string {
	out := titleStyle.Render("Upload Document") + "\n\n"

	file := a.upload.filePath
	if file == "" {
		file = mutedStyle.Render("(none)")
	}
	docType := a.uploadDocType()
	if docType == "" {
		docType = mutedStyle.Render("(unset)")
	}
	out += fmt.Sprintf("File: %s\nType: %s\n\n", file, docType)

	switch a.upload.phase {
	case uploadUploading:
		out += "Uploading...\n"
	case uploadError:
		out += errorStyle.Render(a.upload.errText) + "\n"
	case uploadSuccess:
		r := a.upload.result
		out += headerStyle.Render(r.merchant) + "  " + r.date
		if r.timeOfDay != "" {
			out += " " + r.timeOfDay
		}
		out += "\n"
		for _, line := range r.lines {
			out += fmt.Sprintf("  %-30s %s\n", line.name, line.cost)
		}
		out += fmt.Sprintf("  %-30s %s\n", headerStyle.Render("Total"), r.total)
	}

	out += "\n" + mutedStyle.Render("[f] File  [t] Type  [enter] Upload")
	return out
}
