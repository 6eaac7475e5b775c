// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/table"
	"sigs.k8s.io/yaml"

	"github.com/cvrgrid/waveform-transfer/sdk/services/catalog"
	"github.com/cvrgrid/waveform-transfer/sdk/services/transfer"
	"github.com/cvrgrid/waveform-transfer/sdk/utils"
)

var stageColors = map[transfer.Stage]*color.Color{
	transfer.StageCatalog:           color.New(color.FgCyan),
	transfer.StageSourceUnavailable: color.New(color.FgYellow, color.Bold),
	transfer.StageActivation:        color.New(color.FgCyan),
	transfer.StageTransfer:          color.New(color.FgBlue),
	transfer.StageComplete:          color.New(color.FgGreen, color.Bold),
	transfer.StageFailed:            color.New(color.FgRed, color.Bold),
}

func stageNotifier(w io.Writer) transfer.Notifier {
	return func(stage transfer.Stage, message string) {
		c, ok := stageColors[stage]
		if !ok {
			fmt.Fprintln(w, message)
			return
		}
		_, _ = c.Fprintln(w, message)
	}
}

// encode writes v as json or yaml; short is handled by the caller.
func encode(w io.Writer, v any, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printEndpoints(w io.Writer, personal, server *catalog.Partition, format string) error {
	if format != "short" {
		return encode(w, map[string]*catalog.Partition{
			string(catalog.Personal): personal,
			string(catalog.Server):   server,
		}, format)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Partition", "Name", "Owner", "Activated", "Connected", "Servers"})
	for _, p := range []*catalog.Partition{personal, server} {
		for _, e := range p.Endpoints {
			connected := 0
			for _, s := range e.Servers {
				if s.IsConnected() {
					connected++
				}
			}
			t.AppendRow(table.Row{
				p.Kind, e.Name, e.Username, e.IsActivated(),
				fmt.Sprintf("%d/%d", connected, len(e.Servers)), serverHosts(e.Servers),
			})
		}
	}
	t.Render()
	return nil
}

func serverHosts(servers []catalog.ServerRecord) string {
	hosts := make([]string, 0, len(servers))
	for _, s := range servers {
		h := s.Hostname
		if s.Port != 0 {
			h = fmt.Sprintf("%s:%d", h, s.Port)
		}
		hosts = append(hosts, h)
	}
	return strings.Join(hosts, ", ")
}

func printDiscovery(w io.Writer, root, format string) error {
	files, err := utils.DiscoverFiles(root)
	if err != nil {
		return err
	}
	if format != "short" {
		return encode(w, files, format)
	}

	top := 0
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Path", "Size", "Modified", "Transferred"})
	for _, f := range files {
		// only the first level is transferred
		direct := !strings.Contains(f.Path, "/")
		if direct {
			top++
		}
		t.AppendRow(table.Row{f.Path, f.Size, f.ModTime.Format("2006-01-02 15:04:05"), direct})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d files", len(files)), "", "", top})
	t.Render()
	return nil
}

type reportView struct {
	RunID        string          `json:"run_id"`
	Status       transfer.Status `json:"status"`
	Source       string          `json:"source_endpoint"`
	Destination  string          `json:"destination_endpoint"`
	Label        string          `json:"label,omitempty"`
	SubmissionID string          `json:"submission_id,omitempty"`
	TaskID       string          `json:"task_id,omitempty"`
	Files        []string        `json:"files,omitempty"`
	Error        string          `json:"error,omitempty"`
}

func printReport(w io.Writer, r *transfer.Report, format string) error {
	if format == "short" {
		// stage lines were already printed
		if r.Status == transfer.StatusOK {
			fmt.Fprintf(w, "task %s: %d files to %s%s\n", r.TaskID, len(r.Files), r.Destination, r.DestinationRoot)
		}
		return nil
	}
	view := reportView{
		RunID:        r.RunID,
		Status:       r.Status,
		Source:       r.Source,
		Destination:  r.Destination,
		Label:        r.Label,
		SubmissionID: r.SubmissionID,
		TaskID:       r.TaskID,
		Files:        r.Files,
	}
	if r.Err != nil {
		view.Error = r.Err.Error()
	}
	return encode(w, view, format)
}
