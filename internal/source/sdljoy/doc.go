// Package sdljoy reads joypads through the SDL3 joystick API, loaded at run
// time without cgo.
//
// The SDL bindings load the shared library when the program starts and
// panic if it is missing, so on Linux the reader is only built with the sdl
// tag. Without it Open always fails and the Linux joystick reader is the
// only local joypad source.
package sdljoy
