// Package dialogs provides the modal dialogs of the editor.
package dialogs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pattern-tiler/internal/app"
	"pattern-tiler/internal/export"
)

// ShowExport asks for format and resolution, then writes the center
// tile to a file chosen by the user.
func ShowExport(win fyne.Window, state *app.State) {
	cfg := state.Config.Export

	formatSelect := widget.NewSelect([]string{"png", "jpeg", "bmp", "svg"}, nil)
	formatSelect.SetSelected(cfg.Format)

	resolution := widget.NewEntry()
	resolution.SetText(strconv.Itoa(cfg.Resolution))

	smoothingSelect := widget.NewSelect([]string{"none", "low", "high"}, nil)
	smoothingSelect.SetSelected(cfg.Smoothing)

	quality := widget.NewEntry()
	quality.SetText(strconv.FormatFloat(cfg.Quality, 'f', 2, 64))

	form := []*widget.FormItem{
		widget.NewFormItem("Format", formatSelect),
		widget.NewFormItem("Resolution", resolution),
		widget.NewFormItem("Smoothing", smoothingSelect),
		widget.NewFormItem("JPEG quality", quality),
	}

	dialog.ShowForm("Export Tile", "Export", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		res, err := strconv.Atoi(resolution.Text)
		if err != nil {
			dialog.ShowError(fmt.Errorf("resolution: %w", err), win)
			return
		}
		q, err := strconv.ParseFloat(quality.Text, 64)
		if err != nil {
			dialog.ShowError(fmt.Errorf("quality: %w", err), win)
			return
		}
		pickTarget(win, state, formatSelect.Selected, res, smoothingSelect.Selected, q)
	}, win)
}

func pickTarget(win fyne.Window, state *app.State, format string, resolution int, smoothing string, quality float64) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) == "" {
			path += "." + format
		}
		if err := writeExport(state, path, format, resolution, smoothing, quality); err != nil {
			dialog.ShowError(err, win)
			return
		}
		dialog.ShowInformation("Export", "Saved "+filepath.Base(path), win)
	}, win)
	fd.SetFileName(state.ProjectName + "." + format)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{"." + format}))
	fd.Show()
}

func writeExport(state *app.State, path, format string, resolution int, smoothing string, quality float64) error {
	markup, err := state.ExportTile(context.Background())
	if err != nil {
		return err
	}
	if format == "svg" {
		return os.WriteFile(path, []byte(markup), 0644)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	sm, err := export.ParseSmoothing(smoothing)
	if err != nil {
		return err
	}
	img, err := export.Rasterize(markup, resolution, sm)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return export.Encode(out, img, f, quality)
}
