package android

import "fmt"

type DmesgTarget struct{}

func NewDmesgTarget() *DmesgTarget { return &DmesgTarget{} }

func (t *DmesgTarget) Name() string { return "dmesg" }

func (t *DmesgTarget) FileName() string { return "dmesg.log" }

func (t *DmesgTarget) Command(dest string) string {
	return fmt.Sprintf("dmesg > %s", shellQuote(dest))
}
