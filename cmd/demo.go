package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mateusmacedo/go-fleet/internal/config"
	"github.com/mateusmacedo/go-fleet/internal/fleet"
	"github.com/mateusmacedo/go-fleet/internal/fleet/application"
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	"github.com/mateusmacedo/go-fleet/internal/fleet/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/zaplogger/adapter"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Board and move passengers through a sample fleet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFiles, _ := cmd.Flags().GetStringSlice("env-file")
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := "error"
			if verbose {
				level = cfg.LogLevel
			}
			logger, syncLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{
				App:   cfg.ServiceName,
				Level: level,
				File:  cfg.LogFile,
			})
			if err != nil {
				return err
			}
			defer func() { _ = syncLogger() }()

			slice := fleet.NewFleetSlice(fleet.Dependencies{Logger: logger})
			return runDemo(cmd.Context(), cmd.OutOrStdout(), slice.Buses())
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "log at the configured level instead of errors only")
	return cmd
}

type demoVehicle struct {
	id    string
	kind  domain.Kind
	roles []string
}

type boarding struct {
	vehicle string
	name    string
	role    domain.Role
}

// runDemo registers four vehicles, seats officers and firefighters next to
// civilians, then shows duplicate boarding and an overfilled taxi failing.
func runDemo(ctx context.Context, out io.Writer, buses infrastructure.FleetBuses) error {
	vehicles := []demoVehicle{
		{id: "bus", kind: domain.KindBus},
		{id: "taxi", kind: domain.KindTaxi},
		{id: "police-car", kind: domain.KindPoliceCar, roles: []string{string(domain.RoleOfficer)}},
		{id: "fire-truck", kind: domain.KindFireTruck, roles: []string{string(domain.RoleFirefighter)}},
	}
	for _, v := range vehicles {
		err := buses.RegisterVehicle.Dispatch(ctx, application.NewRegisterVehicleCommand(application.RegisterVehicleData{
			VehicleID:     v.id,
			Kind:          string(v.kind),
			AcceptedRoles: v.roles,
		}))
		if err != nil {
			return err
		}
	}

	board := func(b boarding) error {
		return buses.BoardPassenger.Dispatch(ctx, application.NewBoardPassengerCommand(application.BoardPassengerData{
			VehicleID:     b.vehicle,
			PassengerName: b.name,
			Role:          string(b.role),
		}))
	}

	initial := []boarding{
		{"bus", "Alice", domain.RoleCivilian},
		{"bus", "Bob", domain.RoleCivilian},
		{"bus", "Officer Steve", domain.RoleOfficer},
		{"taxi", "Charlie", domain.RoleCivilian},
		{"taxi", "Firefighter Lucy", domain.RoleFirefighter},
		{"police-car", "Officer John", domain.RoleOfficer},
		{"police-car", "Officer Mike", domain.RoleOfficer},
		{"fire-truck", "Firefighter Kate", domain.RoleFirefighter},
		{"fire-truck", "Firefighter Tom", domain.RoleFirefighter},
	}
	for _, b := range initial {
		if err := board(b); err != nil {
			return err
		}
	}

	for _, b := range []boarding{
		{"taxi", "Alice", domain.RoleCivilian},
		{"bus", "Charlie", domain.RoleCivilian},
		{"police-car", "Diana", domain.RoleCivilian},
	} {
		if err := board(b); err != nil {
			fmt.Fprintln(out, errorStyle.Render("[ERROR] "+err.Error()))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("Transport status"))
	report, err := buses.FleetStatus.Dispatch(ctx, application.NewFleetStatusQuery())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderReport(report))
	fmt.Fprintln(out, totalStyle.Render(fmt.Sprintf("Total humans on the road: %d", report.TotalOccupied)))

	err = buses.DisembarkPassenger.Dispatch(ctx, application.NewDisembarkPassengerCommand(application.DisembarkPassengerData{
		VehicleID:     "taxi",
		PassengerName: "Charlie",
	}))
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("After Charlie left the taxi"))
	report, err = buses.FleetStatus.Dispatch(ctx, application.NewFleetStatusQuery())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderReport(report))
	fmt.Fprintln(out, totalStyle.Render(fmt.Sprintf("Total humans on the road: %d", report.TotalOccupied)))

	for _, b := range []boarding{
		{"taxi", "Charlie", domain.RoleCivilian},
		{"taxi", "Diana", domain.RoleCivilian},
		{"taxi", "Edward", domain.RoleCivilian},
	} {
		if err := board(b); err != nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, errorStyle.Render("[ERROR] "+b.name+": "+err.Error()))
			break
		}
	}
	return nil
}

func renderReport(report domain.FleetReport) string {
	rows := make([]string, 0, len(report.Vehicles))
	for _, v := range report.Vehicles {
		names := make([]string, 0, len(v.Passengers))
		for _, p := range v.Passengers {
			names = append(names, p.Name)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			cellStyle.Width(12).Render(string(v.Kind)),
			cellStyle.Width(14).Render(fmt.Sprintf("%d/%d seats", v.Occupied, v.Capacity)),
			strings.Join(names, ", "),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
