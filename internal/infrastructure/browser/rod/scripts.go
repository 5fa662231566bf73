package rod

// Page-side snippets. Each runs with `this` bound to the node it is
// evaluated on.
const (
	jsDocument = `() => document`

	jsQueryAll = `(sel) => {
		try {
			return Array.from(this.querySelectorAll(sel));
		} catch (e) {
			return [];
		}
	}`

	jsShadowRoots = `() => Array.from(this.querySelectorAll('*'))
		.filter((e) => e.shadowRoot)
		.map((e) => e.shadowRoot)`

	jsVisible = `() => {
		const r = this.getBoundingClientRect();
		return (r.width > 0 && r.height > 0) || this.getClientRects().length > 0;
	}`

	jsRect = `() => {
		const r = this.getBoundingClientRect();
		return { left: r.left, top: r.top, width: r.width, height: r.height };
	}`

	jsIsEditable = `() => !!this.isContentEditable`

	jsInnerText = `() => typeof this.innerText === 'string' ? this.innerText : (this.textContent || '')`

	jsInsideOf = `(sel) => {
		try {
			return !!(this.closest && this.closest(sel));
		} catch (e) {
			return false;
		}
	}`

	jsFocus = `() => {
		if (typeof this.focus === 'function') this.focus({ preventScroll: true });
	}`

	jsScrollIntoView = `() => {
		if (typeof this.scrollIntoView === 'function') this.scrollIntoView({ block: 'center', inline: 'nearest' });
	}`

	jsClearContent = `() => { this.textContent = ''; }`

	jsSetTextContent = `(v) => { this.textContent = v; }`

	jsCaretToEnd = `() => {
		const sel = window.getSelection();
		if (!sel) return;
		const range = document.createRange();
		range.selectNodeContents(this);
		range.collapse(false);
		sel.removeAllRanges();
		sel.addRange(range);
	}`

	jsSetNativeValue = `(v) => {
		const proto = this instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype
			: this instanceof HTMLSelectElement ? HTMLSelectElement.prototype
			: HTMLInputElement.prototype;
		const desc = Object.getOwnPropertyDescriptor(proto, 'value');
		if (desc && desc.set) desc.set.call(this, v); else this.value = v;
	}`

	jsDispatch = `(d) => {
		const init = { bubbles: d.bubbles, cancelable: d.cancelable, composed: true };
		let ev;
		switch (d.kind) {
		case 'input':
			ev = new InputEvent(d.type, { ...init, inputType: d.inputType || '', data: d.data ?? null });
			break;
		case 'keyboard':
			ev = new KeyboardEvent(d.type, {
				...init, key: d.key, code: d.code, keyCode: d.keyCode, which: d.keyCode,
				ctrlKey: !!d.ctrlKey, metaKey: !!d.metaKey, view: window,
			});
			break;
		case 'pointer':
			ev = new PointerEvent(d.type, {
				...init, clientX: d.clientX || 0, clientY: d.clientY || 0, button: 0,
				buttons: d.buttons || 0, pointerType: 'mouse', isPrimary: true, view: window,
			});
			break;
		case 'mouse':
			ev = new MouseEvent(d.type, {
				...init, clientX: d.clientX || 0, clientY: d.clientY || 0, button: 0,
				buttons: d.buttons || 0, view: window,
			});
			break;
		default:
			ev = new Event(d.type, init);
		}
		return this.dispatchEvent(ev);
	}`

	jsClick = `() => this.click()`

	jsCallMethod = `(name) => {
		if (typeof this[name] !== 'function') return false;
		this[name]();
		return true;
	}`

	jsClosestForm = `() => {
		const f = this.closest ? this.closest('form') : null;
		return f ? [f] : [];
	}`

	// Watches the document and every open shadow root present at install time.
	jsObserve = `(binding, key) => {
		const prev = window[key];
		if (prev) prev.disconnect();
		const obs = new MutationObserver(() => {
			try { window[binding](''); } catch (e) {}
		});
		const opts = { subtree: true, childList: true, characterData: true };
		const watch = (root) => {
			obs.observe(root, opts);
			root.querySelectorAll('*').forEach((e) => { if (e.shadowRoot) watch(e.shadowRoot); });
		};
		watch(document);
		window[key] = obs;
		return true;
	}`

	jsUnobserve = `(key) => {
		const obs = window[key];
		if (obs) {
			obs.disconnect();
			delete window[key];
		}
	}`
)
