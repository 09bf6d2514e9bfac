package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rv32iss/emulator/api"
	"github.com/rv32iss/emulator/config"
	"github.com/rv32iss/emulator/debugger"
	"github.com/rv32iss/emulator/loader"
	"github.com/rv32iss/emulator/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		configPath  = flag.String("config", "", "Path to a TOML configuration file")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum retired instructions before halt (0: use config default)")
		stackSize   = flag.Uint("stack-size", 0, "Stack size in bytes (0: use config default)")
		entryPoint  = flag.String("entry", "", "Entry point address, hex or decimal (ignored for ELF images; default from config)")
		elfForce    = flag.Bool("elf", false, "Force ELF32 parsing instead of sniffing the image magic number")
		verboseMode = flag.Bool("verbose", false, "Verbose output")

		enableTrace    = flag.Bool("trace", false, "Enable execution trace")
		traceFile      = flag.String("trace-file", "", "Trace output file (default: trace.log in log dir)")
		traceMaxEntry  = flag.Int("trace-max-entries", 0, "Maximum retained trace entries (0: config default)")
		enableMemTrace = flag.Bool("mem-trace", false, "Enable memory access trace")
		enableStats    = flag.Bool("stats", false, "Enable performance statistics")
		statsFile      = flag.String("stats-file", "", "Statistics output file (default: stats.<format> in log dir)")
		enableCoverage = flag.Bool("coverage", false, "Enable code coverage tracking")
		coverageFile   = flag.String("coverage-file", "", "Coverage output file (default: coverage.txt in log dir)")
		enableRegTrace = flag.Bool("register-trace", false, "Enable register write tracing")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32iss %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	imagePath := flag.Arg(0)
	data, err := os.ReadFile(imagePath) // #nosec G304 -- user-specified image path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image %s: %v\n", imagePath, err)
		os.Exit(1)
	}

	img, err := loadImage(data, imagePath, *elfForce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	stackBytes := uint32(cfg.Execution.StackSize) // #nosec G115 -- config-provided size, bounded by OS memory limits
	if *stackSize != 0 {
		stackBytes = uint32(*stackSize) // #nosec G115 -- flag-provided size, bounded by OS memory limits already
	}

	mem := vm.NewMemory()
	if err := img.InstallInto(mem); err != nil {
		fmt.Fprintf(os.Stderr, "Error installing image: %v\n", err)
		os.Exit(1)
	}

	entryAddr := img.Entry
	if *entryPoint != "" {
		entryAddr, err = parseAddress(*entryPoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid entry point: %s\n", *entryPoint)
			os.Exit(1)
		}
	}

	machine := vm.New(mem, entryAddr, vm.XLen32)

	if *maxCycles != 0 {
		machine.CycleLimit = *maxCycles
	} else {
		machine.CycleLimit = uint64(cfg.Execution.MaxCycles)
	}

	stackTop := loader.DefaultStackTop(mem)
	if stackBytes != 0 {
		stackTop = vm.StackSegmentStart + stackBytes
	}
	machine.InitializeStack(stackTop)

	if *verboseMode {
		fmt.Printf("Loaded %s\n", imagePath)
		fmt.Printf("Entry point: 0x%08X\n", entryAddr)
		fmt.Printf("Stack top:   0x%08X\n", stackTop)
	}

	setupDiagnostics(machine, cfg, diagnosticsFlags{
		trace:      *enableTrace,
		traceFile:  *traceFile,
		traceMax:   *traceMaxEntry,
		memTrace:   *enableMemTrace,
		stats:      *enableStats,
		statsFile:  *statsFile,
		coverage:   *enableCoverage,
		covFile:    *coverageFile,
		regTrace:   *enableRegTrace,
		verbose:    *verboseMode,
	})

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.LoadSymbols(map[string]uint32{})
		dbg.LoadSourceMap(map[uint32]string{})

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("rv32iss debugger - type 'help' for commands")
			fmt.Printf("Image loaded: %s\n\n", imagePath)

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if *verboseMode {
		fmt.Println("\nStarting execution...")
		fmt.Println("----------------------------------------")
	}

	runErr := machine.Run()

	if *verboseMode {
		fmt.Println("----------------------------------------")
		fmt.Printf("Instructions retired: %d\n", machine.Instret)
		fmt.Printf("Final PC:             0x%08X\n", machine.PC)
	}

	if runErr != nil && machine.State == vm.StateError {
		fmt.Fprintf(os.Stderr, "Runtime error at pc=0x%08X: %v\n", machine.PC, runErr)
		os.Exit(1)
	}

	if machine.Stats != nil {
		flushStatistics(machine, cfg, *statsFile, *verboseMode)
	}
	if machine.Coverage != nil {
		flushCoverage(machine, *coverageFile, *verboseMode)
	}
}

// diagnosticsFlags bundles the optional diagnostics flags that setupDiagnostics wires onto a Machine.
type diagnosticsFlags struct {
	trace     bool
	traceFile string
	traceMax  int
	memTrace  bool
	stats     bool
	statsFile string
	coverage  bool
	covFile   string
	regTrace  bool
	verbose   bool
}

func setupDiagnostics(machine *vm.Machine, cfg *config.Config, f diagnosticsFlags) {
	if f.trace {
		path := f.traceFile
		if path == "" {
			path = filepath.Join(config.GetLogPath(), "trace.log")
		}
		w, err := os.Create(path) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
		} else {
			maxEntries := f.traceMax
			if maxEntries == 0 {
				maxEntries = cfg.Trace.MaxEntries
			}
			machine.Trace = vm.NewExecutionTrace(w, maxEntries)
			if f.verbose {
				fmt.Printf("Execution trace enabled: %s\n", path)
			}
		}
	}

	if f.memTrace {
		machine.MemoryTrace = vm.NewMemoryTrace(cfg.Trace.MaxEntries)
		if f.verbose {
			fmt.Println("Memory trace enabled")
		}
	}

	if f.stats {
		machine.Stats = vm.NewPerformanceStatistics()
		if f.verbose {
			fmt.Println("Performance statistics enabled")
		}
	}

	if f.coverage {
		machine.Coverage = vm.NewCodeCoverage()
		if f.verbose {
			fmt.Println("Code coverage enabled")
		}
	}

	if f.regTrace {
		machine.RegisterTrace = vm.NewRegisterTrace(cfg.Trace.MaxEntries)
		machine.RegisterTrace.Enabled = true
		if f.verbose {
			fmt.Println("Register trace enabled")
		}
	}
}

func flushStatistics(machine *vm.Machine, cfg *config.Config, statsFile string, verbose bool) {
	path := statsFile
	if path == "" {
		path = filepath.Join(config.GetLogPath(), "stats."+cfg.Statistics.Format)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified statistics output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating statistics file: %v\n", err)
		return
	}
	defer f.Close()

	stats := machine.Stats
	fmt.Fprintf(f, "{\n  \"total_executed\": %d,\n  \"load_count\": %d,\n  \"store_count\": %d,\n  \"branch_count\": %d,\n  \"jump_count\": %d\n}\n",
		stats.TotalExecuted, stats.LoadCount, stats.StoreCount, stats.BranchCount, stats.JumpCount)

	if verbose {
		fmt.Printf("Statistics written: %s\n", path)
		fmt.Printf("Instructions executed: %d\n", stats.TotalExecuted)
	}
}

func flushCoverage(machine *vm.Machine, coverageFile string, verbose bool) {
	path := coverageFile
	if path == "" {
		path = filepath.Join(config.GetLogPath(), "coverage.txt")
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified coverage output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating coverage file: %v\n", err)
		return
	}
	defer f.Close()

	for _, pc := range machine.Coverage.Covered() {
		fmt.Fprintf(f, "0x%08X %d\n", pc, machine.Coverage.HitCount(pc))
	}

	if verbose {
		fmt.Printf("Coverage written: %s (%d unique addresses)\n", path, machine.Coverage.UniqueCount())
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// loadImage dispatches to ELF or flat-binary loading. ELF is selected either
// by -elf or by the file starting with the ELF magic number; everything else
// is treated as a flat image placed at the default code segment base.
func loadImage(data []byte, path string, forceELF bool) (*loader.Image, error) {
	looksLikeELF := len(data) >= 4 && data[0] == 0x7f && data[1] == 'E' && data[2] == 'L' && data[3] == 'F'
	if forceELF || looksLikeELF {
		f, err := os.Open(path) // #nosec G304 -- user-specified image path, already read once above
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return loader.LoadELF32(f)
	}
	return loader.LoadFlat(data, vm.CodeSegmentStart)
}

func parseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	// Detects the parent process exiting so the server doesn't orphan itself
	// when launched as a helper process by a GUI frontend.
	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func printHelp() {
	fmt.Printf(`rv32iss %s — an RV32I instruction set simulator

Usage: rv32iss [options] <image-file>
       rv32iss -api-server [-port N]

Options:
  -help               Show this help message
  -version            Show version information
  -api-server         Start HTTP API server mode (no image file required)
  -port N             API server port (default: 8080, used with -api-server)
  -debug              Start in debugger mode (CLI)
  -tui                Start in TUI debugger mode
  -config PATH        Load settings from a TOML configuration file
  -max-cycles N       Maximum retired instructions before halt
  -stack-size N       Stack size in bytes
  -entry ADDR         Override entry point address (hex with 0x prefix, or decimal)
  -elf                Force ELF32 parsing instead of sniffing the image magic number
  -verbose            Enable verbose output

Tracing & Performance Options:
  -trace              Enable execution trace
  -trace-file FILE    Trace output file (default: trace.log in log dir)
  -trace-max-entries N  Maximum retained trace entries
  -mem-trace          Enable memory access trace
  -register-trace     Enable register write trace
  -stats              Enable performance statistics
  -stats-file FILE    Statistics output file (default: stats.<format> in log dir)
  -coverage           Enable code coverage tracking
  -coverage-file FILE Coverage output file (default: coverage.txt in log dir)

Examples:
  # Run a flat binary image
  rv32iss program.bin

  # Run a RISC-V ELF image
  rv32iss program.elf

  # Run with the interactive debugger
  rv32iss -debug program.bin

  # Run with the TUI debugger
  rv32iss -tui program.bin

  # Run with execution trace and statistics
  rv32iss -trace -stats program.bin

  # Start the HTTP/WebSocket API server
  rv32iss -api-server -port 3000

Debugger Commands (when in -debug mode):
  run, r              Start/restart program execution
  continue, c         Continue execution
  step, s             Execute single instruction
  next, n             Step over function calls
  break ADDR          Set breakpoint at address
  watch EXPR          Set a watchpoint
  info registers      Show all registers
  print EXPR          Evaluate and print an expression
  load FILE           Load a new image into the running machine
  help                Show debugger help
`, Version)
}
