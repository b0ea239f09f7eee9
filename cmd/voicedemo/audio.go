package main

import (
	"log"

	"github.com/gordonklaus/portaudio"

	"voiceengine"
)

const (
	sampleRate = 48000
	channels   = 1
)

// capturePipeline wraps a PortAudio input stream feeding raw mic frames
// straight to the engine. Echo cancellation, noise suppression, and VAD
// gating are out of scope for the core engine and are not performed here
// either — a real host would layer its own signal chain in front of
// SubmitCapturePCMAsync, but this demo host stays a thin pass-through so
// it exercises exactly what the engine itself promises.
type capturePipeline struct {
	stream *portaudio.Stream
	buf    []float32
	pcm    []int16

	engine *voiceengine.Engine
}

func newCapturePipeline(engine *voiceengine.Engine, frameSize int) (*capturePipeline, error) {
	p := &capturePipeline{
		buf:    make([]float32, frameSize),
		pcm:    make([]int16, frameSize),
		engine: engine,
	}

	params := portaudio.LowLatencyParameters(nil, nil)
	params.Input.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = frameSize

	stream, err := portaudio.OpenStream(params, p.buf)
	if err != nil {
		return nil, err
	}
	p.stream = stream
	return p, nil
}

func (p *capturePipeline) Start() error { return p.stream.Start() }
func (p *capturePipeline) Stop() error  { return p.stream.Stop() }
func (p *capturePipeline) Close() error { return p.stream.Close() }

// ReadOnce pulls one frame from the device and submits it to the engine.
// It's meant to be called in a tight loop on its own goroutine; the engine
// itself decides whether the frame is actually transmitted (see
// captureShouldTransmit in capture.go).
func (p *capturePipeline) ReadOnce() error {
	if err := p.stream.Read(); err != nil {
		return err
	}

	for i, s := range p.buf {
		p.pcm[i] = float32ToInt16(s)
	}

	if err := p.engine.SubmitCapturePCMAsync(p.pcm); err != nil {
		log.Printf("[audio] submit capture: %v", err)
	}
	return nil
}

func float32ToInt16(s float32) int16 {
	v := s * 32767
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// playbackPipeline wraps a PortAudio output stream that receives the
// engine's mixed PCM once per tick.
type playbackPipeline struct {
	stream *portaudio.Stream
	i16buf []int16
	f32buf []float32
}

func newPlaybackPipeline(frameSize int) (*playbackPipeline, error) {
	p := &playbackPipeline{
		i16buf: make([]int16, frameSize),
		f32buf: make([]float32, frameSize),
	}

	params := portaudio.LowLatencyParameters(nil, nil)
	params.Output.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = frameSize

	stream, err := portaudio.OpenStream(params, p.f32buf)
	if err != nil {
		return nil, err
	}
	p.stream = stream
	return p, nil
}

func (p *playbackPipeline) Start() error { return p.stream.Start() }
func (p *playbackPipeline) Stop() error  { return p.stream.Stop() }
func (p *playbackPipeline) Close() error { return p.stream.Close() }

// WriteMixed converts the engine's mixed int16 output to float32 and writes
// it to the output device.
func (p *playbackPipeline) WriteMixed() error {
	for i, s := range p.i16buf {
		p.f32buf[i] = float32(s) / 32768
	}
	return p.stream.Write()
}
