// Package audio sonifies the flow: a soft pad whose filter opens with
// the fluid's kinetic energy. Entirely optional; the solver never
// depends on it.
package audio

import (
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

// Dm add9 voicing, low register. Calm at rest, swells with the flow.
var padFreqs = []float64{73.42, 110.00, 146.83, 174.61, 220.00}

type Processor struct {
	Stream *portaudio.Stream
	Active bool

	time        float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int

	mu           sync.Mutex
	energy       float64
	energySmooth float64
}

func NewProcessor() *Processor {
	delayLen := int(float64(SampleRate) * 0.45)
	return &Processor{
		delayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
	}
}

func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}
	a.Stream = stream
	a.Active = true
	return nil
}

func (a *Processor) Stop() {
	if a.Stream != nil {
		a.Stream.Stop()
		a.Stream.Close()
		a.Stream = nil
	}
	portaudio.Terminate()
	a.Active = false
}

// UpdateEnergy feeds the current kinetic energy; called once per tick
// from the render loop.
func (a *Processor) UpdateEnergy(e float64) {
	a.mu.Lock()
	a.energy = e
	a.mu.Unlock()
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

func (a *Processor) process(out [][]float32) {
	a.mu.Lock()
	target := a.energy
	a.mu.Unlock()

	// Slow morph; energy spikes breathe in rather than click.
	a.energySmooth = a.energySmooth*0.995 + target*0.005

	cutoff := 250.0 + math.Min(a.energySmooth*0.4, 1400.0)
	dt := 1.0 / float64(SampleRate)
	vol := 0.22

	for i := 0; i < len(out[0]); i++ {
		sampleL, sampleR := 0.0, 0.0
		for j, f := range padFreqs {
			g := 1.0 / float64(len(padFreqs))
			lfo := math.Sin(a.time*0.17 + float64(j))
			sampleL += triangle(a.time*(f*0.999)) * g * (0.7 + 0.3*lfo)
			sampleR += triangle(a.time*(f*1.001)) * g * (0.7 + 0.3*lfo)
		}

		var outL, outR float64
		outL, a.filterState[0] = lpf(sampleL, cutoff, dt, a.filterState[0])
		outR, a.filterState[1] = lpf(sampleR, cutoff, dt, a.filterState[1])

		delayL := a.delayLine[0][a.delayHead]
		delayR := a.delayLine[1][a.delayHead]
		mixL := outL + delayL*0.3 + delayR*0.1
		mixR := outR + delayR*0.3 + delayL*0.1
		a.delayLine[0][a.delayHead] = mixL * 0.65
		a.delayLine[1][a.delayHead] = mixR * 0.65
		a.delayHead = (a.delayHead + 1) % len(a.delayLine[0])

		out[0][i] = float32(mixL * vol)
		out[1][i] = float32(mixR * vol)
		a.time += dt
	}
}
