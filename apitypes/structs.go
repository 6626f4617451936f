package apitypes

import (
	"fmt"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 501)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Joypad is one configured physical joypad slot.
type Joypad struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	AxisOffset   int    `json:"axisOffset"`
	AxisCount    int    `json:"axisCount"`
	ButtonOffset int    `json:"buttonOffset"`
	ButtonCount  int    `json:"buttonCount"`
	Assigned     bool   `json:"assigned"`
	Active       bool   `json:"active"`
}

type InfoResponse struct {
	State         string   `json:"state"`
	Mode          string   `json:"mode"`
	PeriodMs      float64  `json:"periodMs"`
	Deadzone      float64  `json:"deadzone"`
	Axes          int      `json:"axes"`
	Buttons       int      `json:"buttons"`
	Sticks        int      `json:"sticks"`
	StickDoF      []int    `json:"stickDof"`
	Trackballs    int      `json:"trackballs"`
	Hats          int      `json:"hats"`
	TouchSurfaces int      `json:"touchSurfaces"`
	Joypads       []Joypad `json:"joypads"`
}

type ValueResponse struct {
	ID    int     `json:"id"`
	Value float64 `json:"value"`
}

type StickResponse struct {
	ID     int       `json:"id"`
	Mode   string    `json:"mode"`
	Values []float64 `json:"values"`
}

type StickDoFResponse struct {
	ID  int `json:"id"`
	DoF int `json:"dof"`
}

type DeadzoneResponse struct {
	Deadzone float64 `json:"deadzone"`
}

// Button is the presentation view of one logical button.
type Button struct {
	Alias  string `json:"alias"`
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
	// Outputs are signed output indices such as "+2" or "-0".
	Outputs []string `json:"outputs"`
}

type Stick struct {
	Label   string    `json:"label"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
	Buttons []Button  `json:"buttons"`
}

// Frame is a full engine snapshot, as served by joypad/frame and pushed to
// websocket clients.
type Frame struct {
	Seq             uint64    `json:"seq"`
	State           string    `json:"state"`
	Mode            string    `json:"mode"`
	PeriodMs        float64   `json:"periodMs"`
	Deadzone        float64   `json:"deadzone"`
	FrameDurationMs float64   `json:"frameDurationMs"`
	Axes            []float64 `json:"axes"`
	Buttons         []float64 `json:"buttons"`
	Sticks          []Stick   `json:"sticks"`
	LogicalButtons  []Button  `json:"logicalButtons"`
	Hold            *Button   `json:"hold,omitempty"`
	Joypads         []Joypad  `json:"joypads"`
	RawAxes         []float64 `json:"rawAxes"`
	RawButtons      []bool    `json:"rawButtons"`
}
