// Package maestro controls a Pololu Maestro servo controller over its
// serial compact protocol.
package maestro

import (
	"io"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

// Compact protocol command bytes.
const (
	cmdSetTarget       = 0x84
	cmdSetSpeed        = 0x87
	cmdSetAcceleration = 0x89
	cmdGetPosition     = 0x90
	cmdGetMovingState  = 0x93
	cmdGoHome          = 0xA2
)

const baudRate = 9600

// MaxChannel is the highest addressable servo channel.
const MaxChannel = 11

// Driver error kinds.
var (
	ErrInvalidChannel     = errors.Errorf("invalid channel; valid channels are 0-%d", MaxChannel)
	ErrInvalidMovingState = errors.New("invalid moving state; value should be 0 or 1")
)

// openDevice is a variable so tests can substitute an in-memory port.
var openDevice = func(path string) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName:        path,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}

// Maestro is a connection to a Maestro board. Positions are in quarter
// microseconds of pulse width, speed in (0.25 us)/(10 ms) and
// acceleration in (0.25 us)/(10 ms)/(80 ms), per the Pololu
// documentation. Not safe for concurrent use; command and reply share one
// serial stream.
type Maestro struct {
	rwc io.ReadWriteCloser
}

// New opens the Maestro at the given serial path. The port is held until
// Close.
func New(path string) (*Maestro, error) {
	rwc, err := openDevice(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to maestro at %q", path)
	}
	return &Maestro{rwc: rwc}, nil
}

// MovingState reports whether any servo is still traveling toward its
// target.
type MovingState int

// The states the board can report.
const (
	ServosStopped MovingState = iota
	ServosMoving
)

// SetTarget commands a channel to the given position in quarter
// microseconds. A target of zero tells the board to stop sending pulses
// on that channel.
func (m *Maestro) SetTarget(channel int, target uint16) error {
	return m.writeChannelCommand(cmdSetTarget, channel, target)
}

// SetSpeed limits how fast a channel moves between targets. Zero means
// unlimited.
func (m *Maestro) SetSpeed(channel int, speed uint16) error {
	return m.writeChannelCommand(cmdSetSpeed, channel, speed)
}

// SetAcceleration limits how fast a channel's speed ramps. Zero means
// unlimited.
func (m *Maestro) SetAcceleration(channel int, accel uint16) error {
	return m.writeChannelCommand(cmdSetAcceleration, channel, accel)
}

// GetPosition reads back a channel's current position in quarter
// microseconds.
func (m *Maestro) GetPosition(channel int) (int, error) {
	if err := checkChannel(channel); err != nil {
		return 0, err
	}
	if err := m.send([]byte{cmdGetPosition, byte(channel)}); err != nil {
		return 0, err
	}
	var buf [2]byte
	if _, err := io.ReadFull(m.rwc, buf[:]); err != nil {
		return 0, errors.Wrap(err, "unable to receive position")
	}
	return int(buf[0]) + 256*int(buf[1]), nil
}

// GetMovingState reports whether any servo is still moving.
func (m *Maestro) GetMovingState() (MovingState, error) {
	if err := m.send([]byte{cmdGetMovingState}); err != nil {
		return ServosStopped, err
	}
	var buf [1]byte
	if _, err := io.ReadFull(m.rwc, buf[:]); err != nil {
		return ServosStopped, errors.Wrap(err, "unable to receive moving state")
	}
	switch buf[0] {
	case 0:
		return ServosStopped, nil
	case 1:
		return ServosMoving, nil
	}
	return ServosStopped, errors.Wrapf(ErrInvalidMovingState, "got %d", buf[0])
}

// GoHome sends all channels to their startup positions.
func (m *Maestro) GoHome() error {
	return m.send([]byte{cmdGoHome})
}

// SetTargets commands each channel to the target at the same index.
func (m *Maestro) SetTargets(channels []int, targets []uint16) error {
	if len(channels) != len(targets) {
		return errors.Errorf("got %d channels but %d targets", len(channels), len(targets))
	}
	for i, ch := range channels {
		if err := m.SetTarget(ch, targets[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetSpeeds sets each channel to the speed at the same index.
func (m *Maestro) SetSpeeds(channels []int, speeds []uint16) error {
	if len(channels) != len(speeds) {
		return errors.Errorf("got %d channels but %d speeds", len(channels), len(speeds))
	}
	for i, ch := range channels {
		if err := m.SetSpeed(ch, speeds[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetAccelerations sets each channel to the acceleration at the same
// index.
func (m *Maestro) SetAccelerations(channels []int, accels []uint16) error {
	if len(channels) != len(accels) {
		return errors.Errorf("got %d channels but %d accelerations", len(channels), len(accels))
	}
	for i, ch := range channels {
		if err := m.SetAcceleration(ch, accels[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetPositions reads back the position of every listed channel.
func (m *Maestro) GetPositions(channels []int) ([]int, error) {
	positions := make([]int, 0, len(channels))
	for _, ch := range channels {
		pos, err := m.GetPosition(ch)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// Close releases the serial port.
func (m *Maestro) Close() error {
	return m.rwc.Close()
}

func (m *Maestro) writeChannelCommand(cmd byte, channel int, value uint16) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	lo, hi := split14(value)
	return m.send([]byte{cmd, byte(channel), lo, hi})
}

func (m *Maestro) send(data []byte) error {
	if _, err := m.rwc.Write(data); err != nil {
		return errors.Wrap(err, "lost connection to maestro")
	}
	return nil
}

// split14 packs a value into the protocol's two 7-bit data bytes.
func split14(v uint16) (lo, hi byte) {
	return byte(v & 0x7F), byte(v >> 7 & 0x7F)
}

func checkChannel(channel int) error {
	if channel < 0 || channel > MaxChannel {
		return errors.Wrapf(ErrInvalidChannel, "channel %d", channel)
	}
	return nil
}
