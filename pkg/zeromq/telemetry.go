package zeromq

import (
	"time"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/cear-inacap/york-control/domain/teleop"
	"github.com/cear-inacap/york-control/pkg/flatbuffers/york/telemetry"
	customlog "github.com/cear-inacap/york-control/pkg/log"
	"github.com/cear-inacap/york-control/pkg/processing"
)

// EncodeWheelCommand serializes one loop iteration as a WheelCommand table
func EncodeWheelCommand(s teleop.Status) []byte {
	builder := flatbuffers.NewBuilder(256)

	targetOffset := builder.CreateString(s.Target)
	var errorOffset flatbuffers.UOffsetT
	if s.Err != nil {
		errorOffset = builder.CreateString(s.Err.Error())
	}

	telemetry.WheelCommandStartWheelsVector(builder, len(s.Wheels))
	for i := len(s.Wheels) - 1; i >= 0; i-- {
		builder.PrependFloat64(s.Wheels[i])
	}
	wheelsOffset := builder.EndVector(len(s.Wheels))

	telemetry.WheelCommandStart(builder)
	telemetry.WheelCommandAddTimestampNs(builder, s.Timestamp.UnixNano())
	telemetry.WheelCommandAddIteration(builder, s.Iteration)
	telemetry.WheelCommandAddTarget(builder, targetOffset)
	telemetry.WheelCommandAddVx(builder, s.Body.VX)
	telemetry.WheelCommandAddVy(builder, s.Body.VY)
	telemetry.WheelCommandAddOmega(builder, s.Body.Omega)
	telemetry.WheelCommandAddWheels(builder, wheelsOffset)
	telemetry.WheelCommandAddLinearSpeed(builder, s.Speed.Linear)
	telemetry.WheelCommandAddAngularSpeed(builder, s.Speed.Angular)
	telemetry.WheelCommandAddSendOk(builder, s.Err == nil)
	if s.Err != nil {
		telemetry.WheelCommandAddError(builder, errorOffset)
	}
	telemetry.FinishWheelCommandBuffer(builder, telemetry.WheelCommandEnd(builder))

	return builder.FinishedBytes()
}

// TelemetryPublisher is a teleop.Observer that publishes every iteration
// through a worker pool, so a slow socket never stalls the control loop.
type TelemetryPublisher struct {
	topic  string
	pool   *processing.Pool
	logger customlog.Logger
}

// NewTelemetryPublisher starts a pool publishing to publisher
func NewTelemetryPublisher(publisher processing.MessagePublisher, topic string, workers, queueSize int, logger customlog.Logger) *TelemetryPublisher {
	pool := processing.NewPool("telemetry", workers, queueSize, logger)
	pool.SetProcessor(processing.PublishProcessor(publisher))
	pool.SetResultHandler(processing.NewLoggingResultHandler(logger).CreateHandlerFunc())
	pool.Start()

	return &TelemetryPublisher{
		topic:  topic,
		pool:   pool,
		logger: logger,
	}
}

// Observe queues running iterations for publishing; other states are
// ignored
func (p *TelemetryPublisher) Observe(s teleop.Status) {
	if s.State != teleop.StateRunning {
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	p.pool.Submit(&processing.Job{
		Topic:       p.topic,
		Payload:     EncodeWheelCommand(s),
		TimestampNs: s.Timestamp.UnixNano(),
	})
}

// Metrics returns the publishing pool metrics
func (p *TelemetryPublisher) Metrics() processing.PoolMetrics {
	return p.pool.GetMetrics()
}

// Stop drains pending messages
func (p *TelemetryPublisher) Stop() {
	p.pool.Stop()
}
