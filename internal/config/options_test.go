/*
Copyright 2024 The Mayastor Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
)

func TestInitFlagsDefaults(t *testing.T) {
	g := NewWithT(t)

	var o Options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.InitFlags(fs)
	g.Expect(fs.Parse(nil)).To(Succeed())

	g.Expect(o.Interval).To(Equal(30 * time.Second))
	g.Expect(o.RequestTimeout).To(Equal(5 * time.Second))
	g.Expect(o.Retries).To(Equal(uint32(10)))
	g.Expect(o.Namespace).To(Equal("mayastor"))
	g.Expect(o.Jaeger).To(BeEmpty())
	g.Expect(o.DisableDeviceValidation).To(BeFalse())
	g.Expect(o.EnableLeaderElection).To(BeFalse())
	g.Expect(o.SyncPeriod).To(Equal(10 * time.Minute))
	g.Expect(o.ReconcileTimeout).To(Equal(DefaultLoopTimeout))
}

func TestInitFlagsOverride(t *testing.T) {
	g := NewWithT(t)

	var o Options
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.InitFlags(fs)
	g.Expect(fs.Parse([]string{
		"--endpoint=http://127.0.0.1:8081/v0",
		"--retries=3",
		"--namespace=custom",
	})).To(Succeed())

	g.Expect(o.Endpoint).To(Equal("http://127.0.0.1:8081/v0"))
	g.Expect(o.Retries).To(Equal(uint32(3)))
	g.Expect(o.Namespace).To(Equal("custom"))
}
