package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"licmgr/internal/files"
	"licmgr/internal/services"
	"licmgr/pkg/contracts/domain"
)

func printRecord(w io.Writer, r domain.CustomerRecord) {
	fmt.Fprintf(w, "  Name:        %s\n", r.Name)
	fmt.Fprintf(w, "  Phone:       %s\n", r.Phone)
	fmt.Fprintf(w, "  Hardware ID: %s\n", r.HardwareID)
	fmt.Fprintf(w, "  Access Code: %s\n", r.AccessCode)
	fmt.Fprintf(w, "  Created:     %s\n", r.CreatedDate)
}

func printIssued(w io.Writer, result *services.IssueResult) {
	fmt.Fprintln(w, "License issued")
	printRecord(w, result.Record)
	if result.PreviousIssues > 0 {
		fmt.Fprintf(w, "Note: %d earlier license(s) exist for this hardware id\n", result.PreviousIssues)
	}
}

func printCustomers(w io.Writer, records []domain.CustomerRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No customers recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPHONE\tHARDWARE ID\tACCESS CODE\tCREATED")
	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, r.Name, r.Phone, r.HardwareID, r.AccessCode, r.CreatedDate)
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %d\n", len(records))
}

func printExports(w io.Writer, dir string, found []files.FileInfo) {
	if len(found) == 0 {
		fmt.Fprintf(w, "No exports found in %s\n", dir)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
	for _, f := range found {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Name, f.Size, f.ModTime.Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

func printStatus(w io.Writer, status services.HealthStatus) {
	fmt.Fprintf(w, "Status: %s (version %s)\n", status.Status, status.Version)

	names := make([]string, 0, len(status.Services))
	for name := range status.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		svc := status.Services[name]
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", name, svc.Status, svc.Message, svc.Path)
	}
	tw.Flush()
}
