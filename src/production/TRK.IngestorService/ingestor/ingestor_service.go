package trkingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Config"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

// maxHistoryLength bounds the per-tracker position history record.
const maxHistoryLength = 100

type Ingestor struct {
	cfg        config.MQTTConfig
	store      store.Store
	mqttClient mqtt.Client
	msgCh      chan trkmodels.TrackerState
	wg         sync.WaitGroup
	logger     *logger.Logger
}

func New(cfg config.MQTTConfig, st store.Store, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		store:  st,
		msgCh:  make(chan trkmodels.TrackerState, 4096),
		logger: logger,
	}
}

func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.brokerURL()).
		SetClientID(i.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.KeepAlive).
		SetPingTimeout(i.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.BrokerUser != "" {
		opts.SetUsername(i.cfg.BrokerUser)
		opts.SetPassword(i.cfg.BrokerPass)
	}

	if i.cfg.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.cfg.Topic
		if i.cfg.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", i.cfg.SharedGroup, i.cfg.Topic)
		}
		i.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	// batch writer
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.batchWriter(ctx)
	}()

	return nil
}

func (i *Ingestor) Stop() {
	if i.mqttClient != nil && i.mqttClient.IsConnected() {
		i.mqttClient.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	i.logger.Logger.Debug().Str("topic", m.Topic()).Str("payload", string(m.Payload())).Msg("Received MQTT message")

	// Expected format: trackers/<tracker_id>/position
	trackerID, ok := TrackerIDFromTopic(m.Topic())
	if !ok {
		i.logger.Logger.Warn().Str("topic", m.Topic()).Str("expected", "trackers/<tracker_id>/position").Msg("Invalid topic format")
		return
	}

	var report trkmodels.PositionReport
	if err := json.Unmarshal(m.Payload(), &report); err != nil {
		i.logger.Logger.Warn().Err(err).Str("tracker_id", trackerID).Msg("Dropping undecodable position report")
		return
	}

	reportedAt := report.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = time.Now().UTC()
	}

	state := trkmodels.TrackerState{
		TrackerID:  trackerID,
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		SpeedKmh:   report.SpeedKmh,
		BatteryPct: report.BatteryPct,
		ReportedAt: reportedAt,
	}

	i.logger.Logger.Debug().Str("tracker_id", trackerID).Msg("Queuing position report")
	i.msgCh <- state
}

func (i *Ingestor) batchWriter(ctx context.Context) {
	batch := make([]trkmodels.TrackerState, 0, i.cfg.BatchSize)
	timer := time.NewTimer(i.cfg.BatchWindow)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		i.logger.Logger.Info().Int("batch_size", len(batch)).Msg("Flushing position batch to store")

		written := 0
		for _, state := range batch {
			if err := i.writeState(ctx, state); err != nil {
				i.logger.Logger.Error().Err(err).Str("tracker_id", state.TrackerID).Msg("Error writing position report")
				continue
			}
			written++
		}

		i.logger.Logger.Info().Int("count", written).Msg("Successfully processed position reports")
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case st, ok := <-i.msgCh:
			if !ok {
				flush()
				return
			}
			batch = append(batch, st)
			if len(batch) >= i.cfg.BatchSize {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(i.cfg.BatchWindow)
			}
		case <-timer.C:
			flush()
			timer.Reset(i.cfg.BatchWindow)
		}
	}
}

// writeState persists one position report: the latest-state record, a
// bounded history append and the recent-telemetry index. Reports from
// trackers with no ownership record are dropped.
func (i *Ingestor) writeState(ctx context.Context, state trkmodels.TrackerState) error {
	_, registered, err := i.store.Get(ctx, store.TrackerOwnerKey(state.TrackerID))
	if err != nil {
		return err
	}
	if !registered {
		i.logger.Logger.Warn().Str("tracker_id", state.TrackerID).Msg("Skipping report: tracker not registered")
		return nil
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := i.store.Set(ctx, store.TrackerStateKey(state.TrackerID), string(raw)); err != nil {
		return err
	}

	if err := i.appendHistory(ctx, state); err != nil {
		return err
	}

	return i.store.SetAdd(ctx, store.RecentTrackersKey, state.TrackerID)
}

func (i *Ingestor) appendHistory(ctx context.Context, state trkmodels.TrackerState) error {
	key := store.TrackerHistoryKey(state.TrackerID)

	var history []trkmodels.TrackerState
	raw, found, err := i.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if found {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			// A corrupt history record is replaced rather than kept.
			i.logger.Logger.Warn().Err(err).Str("tracker_id", state.TrackerID).Msg("Resetting undecodable history record")
			history = nil
		}
	}

	history = append(history, state)
	if len(history) > maxHistoryLength {
		history = history[len(history)-maxHistoryLength:]
	}

	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return i.store.Set(ctx, key, string(encoded))
}

// TrackerIDFromTopic extracts the tracker id from a position topic of the
// form trackers/<tracker_id>/position.
func TrackerIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "trackers" || parts[2] != "position" {
		return "", false
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func (i *Ingestor) brokerURL() string {
	scheme := "tcp"
	if i.cfg.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, i.cfg.BrokerHost, i.cfg.BrokerPort)
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
