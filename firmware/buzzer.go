//go:build rp2040

package main

import "machine"

type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmBuzzer drives a passive buzzer from one PWM channel.
type pwmBuzzer struct {
	pwm pwmGroup
	ch  uint8
	on  uint32
}

func newBuzzer(pwm pwmGroup, pin machine.Pin, hz, duty float64) (*pwmBuzzer, error) {
	if err := pwm.Configure(machine.PWMConfig{Period: uint64(1e9 / hz)}); err != nil {
		return nil, err
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return nil, err
	}
	b := &pwmBuzzer{pwm: pwm, ch: ch, on: uint32(float64(pwm.Top()) * duty)}
	b.Buzz(false)
	return b, nil
}

func (b *pwmBuzzer) Buzz(on bool) error {
	if on {
		b.pwm.Set(b.ch, b.on)
	} else {
		b.pwm.Set(b.ch, 0)
	}
	return nil
}
