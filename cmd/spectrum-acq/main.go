// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spectrum-acq runs a peak acquisition on the spectrum analyzer
// and reports the distribution of the raw peak records.
//
// Usage of spectrum-acq:
//
//	$> spectrum-acq -dur=10s -low=100 -high=200
//	$> spectrum-acq -pmon -pmon-out=acq.pmon   # stop with Ctrl-C
package main // import "github.com/go-lpc/spectrum/cmd/spectrum-acq"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	tlog "github.com/go-daq/tdaq/log"
	"github.com/go-lpc/spectrum/analyzer"
	"github.com/sbinet/pmon"
	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"
)

type params struct {
	period time.Duration // sleep between two drain cycles
	dur    time.Duration // acquisition duration (0: until interrupted)
	report time.Duration // reporting interval
	low    int
	high   int // last bin of the address range (-1: last bin)
	nbins  int // maximum number of bins of the peak word histogram
	top    int // number of histogram bins to display

	pmon    bool
	pmonOut string
	freq    time.Duration
}

func main() {
	var (
		devmem = flag.String("devmem", "/dev/mem", "path to the physical memory device")
		p      params
	)

	flag.DurationVar(&p.period, "period", 1*time.Millisecond, "sleep between two peak FIFO drains")
	flag.DurationVar(&p.dur, "dur", 0, "acquisition duration (0: until interrupted)")
	flag.DurationVar(&p.report, "report", 1*time.Second, "reporting interval")
	flag.IntVar(&p.low, "low", 0, "first bin of the peak address range")
	flag.IntVar(&p.high, "high", -1, "last bin of the peak address range (-1: last bin)")
	flag.IntVar(&p.nbins, "nbins", 128, "maximum number of bins of the peak word histogram")
	flag.IntVar(&p.top, "top", 10, "number of most populated bins to display")
	flag.BoolVar(&p.pmon, "pmon", false, "enable pmon monitoring")
	flag.StringVar(&p.pmonOut, "pmon-out", "spectrum-acq.pmon", "pmon output file")
	flag.DurationVar(&p.freq, "freq", 1*time.Second, "pmon frequency")

	log.SetPrefix("spectrum-acq: ")
	log.SetFlags(0)

	flag.Parse()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	err := run(os.Stdout, *devmem, p, stop,
		analyzer.WithMsgStream(tlog.NewMsgStream("spectrum-acq", tlog.LvlInfo, os.Stderr)),
	)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(w io.Writer, devmem string, p params, stop <-chan os.Signal, opts ...analyzer.Option) error {
	if p.nbins <= 0 {
		return fmt.Errorf("invalid number of histogram bins %d", p.nbins)
	}

	dev, err := analyzer.NewDevice(devmem, opts...)
	if err != nil {
		return fmt.Errorf("could not create spectrum analyzer: %w", err)
	}
	defer dev.Close()

	err = dev.Open()
	if err != nil {
		return fmt.Errorf("could not open spectrum analyzer: %w", err)
	}

	if p.high < 0 {
		p.high = dev.Size() - 1
	}
	if p.low < 0 || p.high < p.low {
		return fmt.Errorf("invalid peak address range [%d, %d]", p.low, p.high)
	}

	err = dev.SetAddressRange(uint32(p.low), uint32(p.high))
	if err != nil {
		return fmt.Errorf("could not set peak address range: %w", err)
	}

	if p.pmon {
		kill, err := monitor(p.pmonOut, p.freq)
		if err != nil {
			return err
		}
		defer kill()
	}

	err = dev.ResetPeakFIFO()
	if err != nil {
		return fmt.Errorf("could not reset peak FIFO: %w", err)
	}

	err = dev.Start(p.period)
	if err != nil {
		return fmt.Errorf("could not start peak acquisition: %w", err)
	}
	defer dev.Stop()

	var (
		beg  = time.Now()
		quit = make(chan struct{})
	)

	grp, ctx := errgroup.WithContext(context.Background())
	grp.Go(func() error {
		defer close(quit)
		var timeout <-chan time.Time
		if p.dur > 0 {
			timer := time.NewTimer(p.dur)
			defer timer.Stop()
			timeout = timer.C
		}
		select {
		case <-stop:
			log.Printf("interrupted")
		case <-timeout:
		case <-ctx.Done():
		}
		return nil
	})

	grp.Go(func() error {
		if p.report <= 0 {
			<-quit
			return nil
		}
		tick := time.NewTicker(p.report)
		defer tick.Stop()
		for {
			select {
			case <-quit:
				return nil
			case <-tick.C:
				n, err := dev.FIFOLength()
				if err != nil {
					return fmt.Errorf("could not read peak FIFO length: %w", err)
				}
				st := dev.Stats()
				fmt.Fprintf(w, "%v: fifo=%d drains=%d records=%d lost=%d\n",
					time.Since(beg).Round(time.Millisecond), n,
					st.Drains, st.Records, st.Lost,
				)
			}
		}
	})

	err = grp.Wait()
	if err != nil {
		return err
	}

	err = dev.Stop()
	if err != nil {
		return fmt.Errorf("could not stop peak acquisition: %w", err)
	}

	summary(w, dev, p, dev.TakePeakLog(), time.Since(beg))

	err = dev.Close()
	if err != nil {
		return fmt.Errorf("could not close spectrum analyzer: %w", err)
	}

	return nil
}

func monitor(fname string, freq time.Duration) (func(), error) {
	pid := os.Getpid()
	p, err := pmon.Monitor(pid)
	if err != nil {
		return nil, fmt.Errorf("could not start monitoring (pid=%d): %w", pid, err)
	}

	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file: %w", err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		err := p.Run()
		if err != nil {
			log.Printf("could not run pmon: %+v", err)
		}
	}()

	return func() {
		err := p.Kill()
		if err != nil {
			log.Printf("could not stop monitoring: %+v", err)
		}
		err = f.Close()
		if err != nil {
			log.Printf("could not close pmon log file: %+v", err)
		}
	}, nil
}

func summary(w io.Writer, dev *analyzer.Device, p params, peaks []analyzer.PeakRecord, elapsed time.Duration) {
	st := dev.Stats()
	fmt.Fprintf(w, "---- peak acquisition summary ----\n")
	fmt.Fprintf(w, "duration:  %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "drains:    %d\n", st.Drains)
	fmt.Fprintf(w, "records:   %d\n", st.Records)
	fmt.Fprintf(w, "overflows: %d (lost=%d, max-fill=%d)\n", st.Overflows, st.Lost, st.MaxFill)
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Fprintf(w, "rate:      %s\n", humanize.SI(float64(len(peaks))/secs, "Hz"))
	}
	fmt.Fprintf(w, "entries:   %d\n", len(peaks))
	if len(peaks) == 0 {
		return
	}

	// peak records are opaque packed words: histogram their raw values.
	lo, hi := peaks[0], peaks[0]
	for _, rec := range peaks[1:] {
		if rec < lo {
			lo = rec
		}
		if rec > hi {
			hi = rec
		}
	}

	nbins := p.nbins
	if span := uint64(hi) - uint64(lo) + 1; span < uint64(nbins) {
		nbins = int(span)
	}

	h := hbook.NewH1D(nbins, float64(lo), float64(hi)+1)
	for _, rec := range peaks {
		h.Fill(float64(rec), 1)
	}

	fmt.Fprintf(w, "words:     [0x%08x, 0x%08x]\n", uint32(lo), uint32(hi))

	bins := make([]hbook.Bin1D, len(h.Binning.Bins))
	copy(bins, h.Binning.Bins)
	sort.SliceStable(bins, func(i, j int) bool {
		return bins[i].SumW() > bins[j].SumW()
	})
	if p.top < len(bins) {
		bins = bins[:p.top]
	}

	fmt.Fprintf(w, "most populated word ranges:\n")
	for _, bin := range bins {
		if bin.SumW() == 0 {
			break
		}
		fmt.Fprintf(w, "  [%12.0f, %12.0f) %8.0f\n", bin.XMin(), bin.XMax(), bin.SumW())
	}
}
