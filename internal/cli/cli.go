package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	internal_http "github.com/Kernel180-BE12/Final-4team-icebang-sub000/internal/http"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/internal/log"
	internal_storage "github.com/Kernel180-BE12/Final-4team-icebang-sub000/internal/storage"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/automation"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/service"
)

func SetupCLI(rootCmd *cobra.Command) {
	runCmd := &cobra.Command{
		Use:   "run id=[workflow-id]",
		Short: "Execute a workflow once and wait for the result (CLI)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving db flag: %v", err)
				os.Exit(1)
			}
			workflowID := parseIDArg(args[0])
			store := initStore(dbConnStr)
			defer store.Close()
			svc := buildExecutionService(store)
			defer svc.Stop()
			runWorkflow(svc, store, workflowID)
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs id=[workflow-id]",
		Short: "List the run history of a workflow (CLI)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving db flag: %v", err)
				os.Exit(1)
			}
			workflowID := parseIDArg(args[0])
			store := initStore(dbConnStr)
			defer store.Close()
			listRuns(store, workflowID)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the engine server with the persistent scheduler",
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving db flag: %v", err)
				os.Exit(1)
			}
			port, err := cmd.Flags().GetString("port")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving port flag: %v", err)
				os.Exit(1)
			}
			store := initStore(dbConnStr)
			defer store.Close()
			svc := buildExecutionService(store)
			defer svc.Stop()

			scheduler := service.NewScheduler(store, svc, log.GetLogger())
			if err := scheduler.Start(); err != nil {
				log.GetLogger().Errorf("Failed to start scheduler: %v", err)
				os.Exit(1)
			}
			defer scheduler.Stop()

			if err := internal_http.StartServer(port, store, svc, scheduler); err != nil {
				log.GetLogger().Errorf("Server stopped: %v", err)
				os.Exit(1)
			}
		},
	}
	serveCmd.Flags().String("port", "8080", "HTTP port to listen on")

	rootCmd.AddCommand(runCmd, runsCmd, serveCmd)
}

func parseIDArg(arg string) int64 {
	parts := strings.Split(arg, "=")
	id, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		log.GetLogger().Errorf("Error parsing id as number: %v", err)
		fmt.Fprintf(os.Stderr, "Error parsing id as number: %v\n", err)
		os.Exit(1)
	}
	return id
}

// buildExecutionService wires the runner registry, body builders and
// orchestrator. The automation runner is registered only when the backend is
// configured; AUTOMATION tasks fail fast otherwise.
func buildExecutionService(store *internal_storage.PostgresStore) *service.ExecutionService {
	logger := log.GetLogger()
	executor := service.NewTaskExecutor(logger)
	if err := executor.Register(models.HTTPTaskType, service.NewHTTPTaskRunner(30*time.Second, logger)); err != nil {
		logger.Errorf("Failed to register HTTP runner: %v", err)
		os.Exit(1)
	}
	cfg := automation.ConfigFromEnv()
	if cfg.BaseURL != "" {
		client, err := automation.NewClient(cfg)
		if err != nil {
			logger.Errorf("Failed to build automation client: %v", err)
			os.Exit(1)
		}
		if err := executor.Register(models.AutomationTaskType, service.NewAutomationTaskRunner(client, logger)); err != nil {
			logger.Errorf("Failed to register automation runner: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Warnf("AUTOMATION_URL not set, AUTOMATION tasks will fail")
	}
	builders := service.NewBodyBuilderRegistry(service.DefaultBindings())
	return service.NewExecutionService(store, executor, builders, logger, 0)
}

func runWorkflow(svc *service.ExecutionService, store *internal_storage.PostgresStore, workflowID int64) {
	svc.ExecuteSync(workflowID, models.ManualTrigger, 0)
	runs, err := store.ListWorkflowRuns(workflowID)
	if err != nil || len(runs) == 0 {
		log.GetLogger().Errorf("Failed to read back run history: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to read back run history: %v\n", err)
		os.Exit(1)
	}
	latest := runs[0]
	fmt.Fprintf(os.Stdout, "Run %d finished with status %s (trace %s)\n", latest.ID, latest.Status, latest.TraceID)
	if latest.Status != models.SuccessRunStatus {
		os.Exit(1)
	}
}

func listRuns(store *internal_storage.PostgresStore, workflowID int64) {
	runs, err := store.ListWorkflowRuns(workflowID)
	if err != nil {
		log.GetLogger().Errorf("Failed to list runs: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to list runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Fprintf(os.Stdout, "No runs found.\n")
		return
	}
	fmt.Fprintf(os.Stdout, "Runs:\n")
	for _, run := range runs {
		fmt.Fprintf(os.Stdout, "- ID: %d, Status: %s, Trigger: %s, Trace: %s, Created: %s\n",
			run.ID, run.Status, run.TriggerType, run.TraceID, run.CreatedAt.Format(time.RFC3339))
	}
}

func initStore(dbConnStr string) *internal_storage.PostgresStore {
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
