package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadModel loads and compiles a CUE model definition from a file or a
// directory of CUE files.
func LoadModel(path string) (*Model, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("model path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("access model path: %w", err)
	}

	var cfg *load.Config
	var args []string
	if info.IsDir() {
		cfg = &load.Config{Dir: path}
		args = []string{"."}
	} else {
		cfg = &load.Config{Dir: filepath.Dir(path)}
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	return CompileModel(value)
}
