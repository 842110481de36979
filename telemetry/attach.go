package telemetry

import (
	"errors"
	"fmt"

	"wizmind/process"
	"wizmind/search"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const DefaultProcessName = "Cogmind"

var (
	ErrProcessNotFound = errors.New("process not open")
	ErrNotInstrumented = errors.New("process not run with -luigiai")
)

// Signature is the marker at the start of the telemetry block
var Signature = process.AOBFromWords(Magic1, Magic2)

// Locate scans committed read-write memory of proc for the telemetry block
func Locate(proc process.Process, options ...search.Option) (process.ProcessMemoryAddress, error) {
	if err := proc.UpdateMemoryMap(); err != nil {
		return 0, fmt.Errorf("update memory map: %w", err)
	}
	return search.FindFirst(proc, Signature, options...)
}

// Attach opens every process called name and returns a Reader for the
// first one exposing the telemetry block. Processes without it are closed.
func Attach(finder process.ProcessFinder, open process.Opener, name string, options ...search.Option) (*Reader, error) {
	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "attach"))

	candidates, err := finder.FindProcessByName(name)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", name, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrProcessNotFound)
	}

	for _, candidate := range candidates {
		proc, err := open(candidate.PID)
		if err != nil {
			log.Warn("Failed to open process: ", candidate.PID, " ", err)
			continue
		}

		addr, err := Locate(proc)
		if err == nil {
			log.Infoln("Found telemetry block in", candidate.Name, candidate.PID, "at", addr.ToString())
			return NewReader(proc, addr), nil
		}
		if !errors.Is(err, search.ErrSignatureNotFound) {
			log.Warn("Failed to scan process: ", candidate.PID, " ", err)
		}
		proc.Close()
	}

	return nil, fmt.Errorf("%s: %w", name, ErrNotInstrumented)
}
