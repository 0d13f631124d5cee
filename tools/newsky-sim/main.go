// newsky-sim is a local stand-in for the Newsky airline API. It serves a
// small scripted set of flights that move through their lifecycle over
// time, so the bot can be exercised without real credentials.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

type airport struct {
	ICAO string `json:"icao"`
	Name string `json:"name"`
}

type times struct {
	Out *string `json:"out"`
	Off *string `json:"off"`
	On  *string `json:"on"`
	In  *string `json:"in"`
}

type result struct {
	LandingRate float64 `json:"landingRate"`
	MaxG        float64 `json:"maxG"`
}

type flight struct {
	ID           string  `json:"_id"`
	Callsign     string  `json:"callsign"`
	FlightNumber string  `json:"flightNumber"`
	PilotName    string  `json:"pilotName"`
	Network      string  `json:"network"`
	Aircraft     string  `json:"aircraft"`
	Dep          airport `json:"dep"`
	Arr          airport `json:"arr"`
	Times        times   `json:"times"`
	Result       *result `json:"result,omitempty"`
	Close        bool    `json:"close"`
	Deleted      bool    `json:"deleted"`
}

var (
	mu      sync.Mutex
	started = time.Now()
	flights = map[string]*flight{
		"sim001": {
			ID: "sim001", Callsign: "SBW101", FlightNumber: "SB101",
			PilotName: "Alex Chen", Network: "VATSIM", Aircraft: "A320",
			Dep: airport{ICAO: "KSFO", Name: "San Francisco Intl"},
			Arr: airport{ICAO: "KLAX", Name: "Los Angeles Intl"},
		},
		"sim002": {
			ID: "sim002", Callsign: "SBW202", FlightNumber: "SB202",
			PilotName: "Sam Ortiz", Network: "", Aircraft: "B738",
			Dep: airport{ICAO: "EGLL", Name: "London Heathrow"},
			Arr: airport{ICAO: "EHAM", Name: "Amsterdam Schiphol"},
		},
	}
)

// advance moves the scripted flights through their lifecycle based on
// elapsed wall time: takeoff after 30s, landing after 90s, closed after
// 150s. sim002 gets deleted instead of closed.
func advance() {
	elapsed := time.Since(started)
	now := time.Now().UTC().Format(time.RFC3339)

	f1 := flights["sim001"]
	if elapsed > 30*time.Second && f1.Times.Off == nil {
		f1.Times.Off = &now
	}
	if elapsed > 90*time.Second && f1.Times.On == nil {
		f1.Times.On = &now
	}
	if elapsed > 150*time.Second && !f1.Close {
		f1.Close = true
		f1.Result = &result{LandingRate: -178, MaxG: 1.31}
	}

	f2 := flights["sim002"]
	if elapsed > 60*time.Second && f2.Times.Off == nil {
		f2.Times.Off = &now
	}
	if elapsed > 120*time.Second && !f2.Deleted {
		f2.Deleted = true
	}
}

func main() {
	addr := ":9999"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	http.HandleFunc("/flights/ongoing", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		advance()
		var active []*flight
		for _, f := range flights {
			if !f.Close && !f.Deleted {
				active = append(active, f)
			}
		}
		mu.Unlock()
		writeResults(w, active)
	})

	http.HandleFunc("/flights/recent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		mu.Lock()
		advance()
		var recent []*flight
		for _, f := range flights {
			if f.Close || f.Deleted {
				recent = append(recent, f)
			}
		}
		mu.Unlock()
		writeResults(w, recent)
	})

	http.HandleFunc("/flight/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/flight/")
		mu.Lock()
		f, ok := flights[id]
		mu.Unlock()
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"flight": f})
	})

	http.HandleFunc("/reset", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		started = time.Now()
		for _, f := range flights {
			f.Times = times{}
			f.Result = nil
			f.Close = false
			f.Deleted = false
		}
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "reset")
	})

	log.Printf("newsky-sim listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func writeResults(w http.ResponseWriter, fs []*flight) {
	if fs == nil {
		fs = []*flight{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": fs})
}
