package browser

// The shell page hosts the document in a sandboxed iframe inside a scroll
// area, the same arrangement the editor uses on the client.
const shellHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; height: 100%; background: #e2e8f0; }
#docScrollArea { position: absolute; inset: 0; overflow-y: auto; overflow-x: hidden; }
#studio-frame { display: block; border: 0; margin: 32px auto 48px; background: #fff; }
</style>
</head>
<body>
<div id="docScrollArea"><iframe id="studio-frame" title="Document" sandbox="allow-scripts allow-same-origin"></iframe></div>
</body>
</html>`

// bootstrapJS installs the helpers the Go side calls. Every helper returns
// null or a plain value so results can be decoded by value.
const bootstrapJS = `(function () {
  const frame = () => document.getElementById('studio-frame');
  const area = () => document.getElementById('docScrollArea');

  function arm(win, doc) {
    doc.body.addEventListener('click', (e) => {
      const t = e.target;
      if (t.innerText && !t.hasAttribute('contenteditable') && t.children.length === 0) {
        t.setAttribute('contenteditable', 'true');
        t.focus();
      }
    });
    doc.body.addEventListener('input', () => {
      window.%[1]s(JSON.stringify({ type: 'HTML_UPDATE', html: doc.documentElement.outerHTML }));
    });
    doc.querySelectorAll('a').forEach((a) => a.addEventListener('click', (e) => e.preventDefault()));
    doc.addEventListener('submit', (e) => e.preventDefault(), true);
    win.open = () => null;
  }

  window.__studioResize = function (w, h) {
    const f = frame();
    f.style.width = w + 'px';
    f.style.height = h + 'px';
    return null;
  };

  window.__studioLoad = function (markup, settleMs) {
    const f = frame();
    const doc = f.contentDocument;
    doc.open();
    doc.write(markup);
    doc.close();
    arm(f.contentWindow, doc);
    return new Promise((resolve) => {
      if (doc.readyState === 'complete') { resolve(null); return; }
      f.contentWindow.addEventListener('load', () => resolve(null), { once: true });
      setTimeout(() => resolve(null), settleMs);
    });
  };

  window.__studioSnapshot = function () {
    const doc = frame().contentDocument;
    return doc && doc.documentElement ? doc.documentElement.outerHTML : '';
  };

  window.__studioBlur = function () {
    const doc = frame().contentDocument;
    if (!doc) return null;
    if (doc.activeElement && doc.activeElement.blur) doc.activeElement.blur();
    const sel = doc.getSelection && doc.getSelection();
    if (sel) sel.removeAllRanges();
    return null;
  };

  window.__studioRect = function (selector) {
    const f = frame();
    const doc = f.contentDocument;
    if (!doc) return null;
    let el = null;
    try { el = doc.querySelector(selector); } catch (e) { return null; }
    if (!el) return null;
    const fr = f.getBoundingClientRect();
    const r = el.getBoundingClientRect();
    return { top: r.top + fr.top, left: r.left + fr.left, width: r.width, height: r.height };
  };

  window.__studioArea = function () {
    const r = area().getBoundingClientRect();
    return { top: r.top, left: r.left, width: r.width, height: r.height };
  };

  window.__studioScrollBy = function (dy) {
    area().scrollBy({ top: dy, behavior: 'smooth' });
    return null;
  };

  window.__studioFrame = function () {
    return new Promise((resolve) => requestAnimationFrame(() => resolve(null)));
  };

  // Lays the document out at full height and returns its box in page
  // coordinates for a clipped capture.
  window.__studioCaptureBox = function () {
    const f = frame();
    const doc = f.contentDocument;
    const a = area();
    a.scrollTop = 0;
    a.style.position = 'static';
    a.style.overflow = 'visible';
    const h = Math.max(doc.documentElement.scrollHeight, doc.body ? doc.body.scrollHeight : 0);
    f.dataset.height = f.style.height;
    f.style.height = h + 'px';
    const r = f.getBoundingClientRect();
    return { top: r.top + window.scrollY, left: r.left + window.scrollX, width: r.width, height: r.height };
  };

  window.__studioCaptureDone = function () {
    const f = frame();
    const a = area();
    a.style.position = '';
    a.style.overflow = '';
    f.style.height = f.dataset.height || '';
    return null;
  };
  return null;
})()`
