//go:build !linux

package serial

import "fmt"

func setBaud(fd, baud int) error {
	return fmt.Errorf("setting baud rate %d is only supported on linux", baud)
}

func drain(fd int) error {
	return nil
}
