package led

import (
	"log"
	"time"
)

const (
	sweepStep = 40 * time.Millisecond
	sweepHold = 200 * time.Millisecond
)

// Sweep runs the blocking startup chase: each pixel lights in turn,
// the full bar holds briefly, then the strip returns to ready. It runs
// at process start and on the reset button; the control loop does no
// other work while it runs.
func (i *Indicator) Sweep() {
	for p := 0; p < i.pixels; p++ {
		if err := i.strip.SetColor(p, sweepColor); err != nil {
			log.Printf("setting pixel %d: %v", p, err)
		}
		i.clk.Sleep(sweepStep)
	}
	i.clk.Sleep(sweepHold)
	if err := i.strip.Clear(); err != nil {
		log.Printf("clearing strip: %v", err)
	}
	i.ready()
}
