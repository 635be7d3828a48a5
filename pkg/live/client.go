package live

import (
	"html/template"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="reactor-root" data-live="{{.Path}}"></div>
<script>{{.Script}}</script>
</body>
</html>
`))

type pageData struct {
	Title  string
	Path   string
	Script template.JS
}

// clientScript applies patch frames to the page and sends events back.
// Node id 1 is the root container; see package protocol for the format.
const clientScript = `(function () {
  var root = document.getElementById("reactor-root");
  var nodes = {1: root};
  var ids = new WeakMap();
  var listeners = {};
  var enc = new TextEncoder(), dec = new TextDecoder();
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + root.dataset.live);
  ws.binaryType = "arraybuffer";

  function Reader(b) { this.b = b; this.p = 0; }
  Reader.prototype.uvarint = function () {
    var v = 0, m = 1, c;
    do { c = this.b[this.p++]; v += (c & 0x7f) * m; m *= 128; } while (c & 0x80);
    return v;
  };
  Reader.prototype.str = function () {
    var n = this.uvarint();
    var s = dec.decode(this.b.subarray(this.p, this.p + n));
    this.p += n;
    return s;
  };

  function uvarint(v) {
    var out = [];
    while (v >= 128) { out.push((v % 128) | 128); v = Math.floor(v / 128); }
    out.push(v);
    return out;
  }
  function str(s) {
    var b = enc.encode(s);
    return uvarint(b.length).concat(Array.from(b));
  }
  function send(id, name, detail) {
    var body = [].concat(uvarint(id), str(name), str(detail));
    var frame = new Uint8Array(4 + body.length);
    frame[0] = 0x01;
    frame[2] = body.length >> 8;
    frame[3] = body.length & 0xff;
    frame.set(body, 4);
    ws.send(frame);
  }

  function register(id, n) { nodes[id] = n; ids.set(n, id); }
  function forget(n) {
    var id = ids.get(n);
    if (id) { delete nodes[id]; }
    for (var c = n.firstChild; c; c = c.nextSibling) { forget(c); }
  }
  function detail(name, ev) {
    var t = ev.target;
    if (name !== "input" && name !== "change") { return ""; }
    return t.type === "checkbox" ? String(t.checked) : String(t.value);
  }
  function listen(id, n, name) {
    var fn = function (ev) {
      if (name === "submit") { ev.preventDefault(); }
      send(id, name, detail(name, ev));
    };
    listeners[id + ":" + name] = fn;
    n.addEventListener(name, fn);
  }
  function unlisten(id, n, name) {
    var key = id + ":" + name;
    if (listeners[key]) { n.removeEventListener(name, listeners[key]); delete listeners[key]; }
  }

  function apply(r) {
    r.uvarint();
    var count = r.uvarint();
    for (var i = 0; i < count; i++) {
      var code = r.b[r.p++], id = r.uvarint(), n = nodes[id], k, v;
      switch (code) {
      case 0x01: register(id, document.createElement(r.str())); break;
      case 0x02: register(id, document.createTextNode(r.str())); break;
      case 0x03: n.nodeValue = r.str(); break;
      case 0x04:
        for (var c = n.firstChild; c; c = c.nextSibling) { forget(c); }
        n.textContent = r.str();
        break;
      case 0x05:
        k = r.str(); v = r.str();
        if (k === "value") { n.value = v; }
        if (k === "checked") { n.checked = v !== "false"; }
        n.setAttribute(k, v);
        break;
      case 0x06:
        k = r.str();
        if (k === "checked") { n.checked = false; }
        n.removeAttribute(k);
        break;
      case 0x07: listen(id, n, r.str()); break;
      case 0x08: unlisten(id, n, r.str()); break;
      case 0x09:
        var parent = nodes[r.uvarint()], anchor = r.uvarint();
        parent.insertBefore(n, anchor ? nodes[anchor] : null);
        break;
      case 0x0a: n.remove(); forget(n); break;
      }
    }
  }

  ws.onmessage = function (ev) {
    var data = new Uint8Array(ev.data);
    var length = (data[2] << 8) | data[3];
    var payload = data.subarray(4, 4 + length);
    if (data[0] === 0x02) { apply(new Reader(payload)); }
    if (data[0] === 0x05) {
      var r = new Reader(payload);
      console.error("reactor:", r.str(), r.str());
    }
  };
  ws.onclose = function () { root.setAttribute("data-disconnected", ""); };
})();
`
