// Package main is the interactive steptrack client: a shell over the
// local file store, for tracking steps without running a server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/service"
	"github.com/avelichka/steptrack/internal/storage"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to manage the
// named profile and view team data.
func repl(name string, dash *service.DashboardService, team *service.TeamService) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("steptrack(%s)> ", name)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, goal <steps>, log <date|today> <steps>, dashboard [date], export <file>, import <file>, leaderboard [today|week], stats, reset, exit")
		case "goal":
			if len(args) < 2 {
				fmt.Println("Usage: goal <steps>")
				continue
			}
			goal, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("Goal must be a number")
				continue
			}
			if _, err := dash.SaveProfile(ctx, name, goal); err != nil {
				fmt.Println("Failed to save goal:", err)
				continue
			}
			fmt.Printf("Weekly goal set to %d steps\n", goal)
		case "log":
			if len(args) < 3 {
				fmt.Println("Usage: log <date|today> <steps>")
				continue
			}
			date := args[1]
			if date == "today" {
				date = time.Now().Format(models.DateLayout)
			}
			steps, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Println("Steps must be a number")
				continue
			}
			if err := dash.AddEntry(ctx, name, date, steps); err != nil {
				fmt.Println("Failed to log steps:", err)
				continue
			}
			fmt.Printf("Logged %d steps on %s\n", steps, date)
		case "dashboard":
			today := time.Now()
			if len(args) > 1 {
				d, err := time.Parse(models.DateLayout, args[1])
				if err != nil {
					fmt.Println("Bad date, want YYYY-MM-DD")
					continue
				}
				today = d
			}
			view, err := dash.ComputeDashboard(ctx, name, today)
			if err != nil {
				fmt.Println("No dashboard:", err)
				continue
			}
			fmt.Printf("Week %s - %s\nSteps: %d / %d (%.1f%%)\n",
				view.WeekStart, view.WeekEnd, view.Total, view.Goal, view.Percent)
		case "export":
			if len(args) < 2 {
				fmt.Println("Usage: export <file>")
				continue
			}
			text, err := dash.ExportCSV(ctx, name)
			if err != nil {
				fmt.Println("Export failed:", err)
				continue
			}
			if err := os.WriteFile(args[1], []byte(text), 0o644); err != nil {
				fmt.Println("Write failed:", err)
				continue
			}
			fmt.Println("Exported to", args[1])
		case "import":
			if len(args) < 2 {
				fmt.Println("Usage: import <file>")
				continue
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				fmt.Println("Read failed:", err)
				continue
			}
			n, err := dash.ImportCSV(ctx, name, string(data))
			if err != nil {
				fmt.Println("Import failed:", err)
				continue
			}
			fmt.Printf("Imported %d entries\n", n)
		case "leaderboard":
			period := "week"
			if len(args) > 1 {
				period = args[1]
			}
			rows, err := team.Leaderboard(ctx, period, time.Now())
			if err != nil {
				fmt.Println("Leaderboard failed:", err)
				continue
			}
			for i, row := range rows {
				fmt.Printf("%d. %s: %d steps (%.1f%%)\n", i+1, row.Name, row.Steps, row.Percent)
			}
		case "stats":
			stats, err := team.Stats(ctx, time.Now())
			if err != nil {
				fmt.Println("Stats failed:", err)
				continue
			}
			fmt.Printf("Members: %d\nActive today: %d\nSteps today: %d\nSteps this week: %d\nSteps all time: %d\nLongest streak: %d days\n",
				stats.Members, stats.ActiveToday, stats.StepsToday, stats.StepsThisWeek, stats.StepsAllTime, stats.LongestStreak)
		case "reset":
			if err := dash.Reset(ctx, name); err != nil {
				fmt.Println("Reset failed:", err)
				continue
			}
			fmt.Println("Profile cleared")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// main parses command-line flags and starts the shell for the given user.
func main() {
	var (
		name    string
		dir     string
		showVer bool
	)

	flag.StringVar(&name, "user", "", "profile name")
	flag.StringVar(&dir, "s", "data", "local storage directory")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("steptrack Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	if name == "" {
		fmt.Print("Enter your name: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			name = strings.TrimSpace(scanner.Text())
		}
	}
	if err := models.ValidateName(name); err != nil {
		fmt.Println("A name is required")
		os.Exit(1)
	}

	profiles := storage.NewProfileStore(storage.NewFileStore(dir))
	dash := service.NewDashboardService(profiles)
	team := service.NewTeamService(profiles)

	repl(name, dash, team)
}
