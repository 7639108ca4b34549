// Standalone return-to-player analysis for the slot machine.
// Uses the same decoder the slot service applies to every roll.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"

	"economy/domain/entities"
)

func main() {
	trials := flag.Int("trials", 1000000, "number of simulated rolls")
	stake := flag.Int64("stake", entities.DefaultSlotStake, "stake per roll")
	flag.Parse()

	fmt.Println("=== Slot Machine Analysis ===")
	exactAnalysis(*stake)
	simulate(*trials, *stake)
}

// exactAnalysis walks every possible draw once
func exactAnalysis(stake int64) {
	var wins int
	var paid int64
	for value := 0; value < entities.SlotValueRange; value++ {
		spin := entities.DecodeSlotValue(value, stake)
		if spin.Won {
			wins++
			paid += spin.Payout
			fmt.Printf("  win: value %2d reels %v x%d\n", value, spin.Reels, spin.Multiplier)
		}
	}

	staked := stake * entities.SlotValueRange
	fmt.Printf("\nExact: %d/%d winning draws (%.4f%%)\n", wins, entities.SlotValueRange,
		float64(wins)/entities.SlotValueRange*100)
	fmt.Printf("  Return to player: %.4f%%\n", float64(paid)/float64(staked)*100)
	fmt.Printf("  Expected net per roll: %+.4f\n", float64(paid-staked)/entities.SlotValueRange)
}

// simulate draws the way the service does and checks the draw is uniform
func simulate(trials int, stake int64) {
	buckets := make([]int, entities.SlotValueRange)
	var net int64
	for i := 0; i < trials; i++ {
		value := rand.Intn(entities.SlotValueRange)
		buckets[value]++
		net += entities.DecodeSlotValue(value, stake).Net()
	}

	expected := float64(trials) / entities.SlotValueRange
	chiSquared := 0.0
	for _, count := range buckets {
		chiSquared += math.Pow(float64(count)-expected, 2) / expected
	}

	fmt.Printf("\nSimulated %d rolls:\n", trials)
	fmt.Printf("  Net result: %+d (%+.4f per roll)\n", net, float64(net)/float64(trials))
	// 82.53 is the 95% critical value for 63 degrees of freedom
	fmt.Printf("  χ² (uniformity): %.2f", chiSquared)
	if chiSquared < 82.53 {
		fmt.Println(" ✓ PASS")
	} else {
		fmt.Println(" ✗ FAIL")
	}
}
