package presets

import "github.com/meshmessaging/usenix23/config"

func init() {
	register("dense", dense())
}

// dense crowds the grid and moves users fast, budgets are tight.
func dense() config.Config {
	return experiment(1000, 5, 5, 5)
}
