// Package tui is the terminal front end for 2048.
//
// Controller is a small state machine (menu, playing, overlay, scores) driven
// by key presses and backed by a service.GameService. Draw paints whatever
// screen the controller is on, and Run/Loop connect both to a tcell terminal.
//
// Keys:
//   - arrows, WASD or hjkl slide the board
//   - r restarts, esc returns to the menu, q quits
//   - on the end-of-game overlay: R restart, C continue (after a win), Q quit
package tui
